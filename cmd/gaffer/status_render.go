package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

var statusKindStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusKindStyles[kind]
	tag := "[" + style.label + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag)
	if colorize && style.color != "" {
		line = style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	underline := strings.Repeat("-", len(heading))
	if !colorize {
		return []string{heading, underline}
	}
	return []string{
		ansiBlue + heading + ansiReset,
		ansiBlue + underline + ansiReset,
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
