package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
)

// stderr receives status output. Tests swap it for a buffer.
var stderr = termenv.NewOutput(os.Stderr)

// setOutputProfile forces plain text when color is disabled.
func setOutputProfile(disable bool) {
	if disable {
		stderr = termenv.NewOutput(os.Stderr, termenv.WithProfile(termenv.Ascii))
	}
}

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return stderr.String(text).Foreground(stderr.Color(color)).String()
}

func bold(text string) string {
	if noColor {
		return text
	}
	return stderr.String(text).Bold().String()
}

const (
	colorRed    = "1"
	colorGreen  = "2"
	colorYellow = "3"
	colorCyan   = "6"
)

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	fmt.Fprintf(stderr, "  %s %s\n", bold(label+":"), val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorCyan, "→ "+msg))
}
