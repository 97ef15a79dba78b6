package main

import (
	"context"
	"log"

	"gaffer/internal/config"
	"gaffer/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg); err != nil {
		log.Fatalf("gafferd: %v", err)
	}
}
