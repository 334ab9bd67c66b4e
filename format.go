package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

type messageType int

const (
	defaultMessage messageType = iota
	successMessage
	errorMessage
	statusMessage
)

const (
	defaultColor = "\x1b[0m"
	statusColor  = "\x1b[36m"
	successColor = "\x1b[32m"
	errorColor   = "\x1b[31m"
)

// colorize is set when stderr is a terminal.
var colorize = term.IsTerminal(int(os.Stderr.Fd()))

// decorateText colors s by message type when writing to a terminal.
func decorateText(s string, msgType messageType) string {
	if !colorize {
		return s
	}
	switch msgType {
	case statusMessage:
		s = statusColor + s
	case successMessage:
		s = successColor + s
	case errorMessage:
		s = errorColor + s
	default:
		return s
	}
	return s + defaultColor
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
