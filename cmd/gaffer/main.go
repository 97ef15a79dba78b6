package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// Ctrl-C cancellation already surfaces through the signal handler;
	// printing context.Canceled on top would just be noise.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
