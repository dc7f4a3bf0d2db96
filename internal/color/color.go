// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	prefix    = "\033["
	suffix    = "m"
	reset     = "\033[0m"
	sbPadding = 16
)

// Code is a single SGR parameter.
type Code int

// Text attributes.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Hi-intensity foreground colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled bool

func init() {
	enabled = isColorCapable()
}

// Enabled reports whether colour output was enabled at init.
func Enabled() bool {
	return enabled
}

// ControlString returns the raw control sequence for the codes,
// regardless of whether colour is enabled.
func ControlString(codes ...Code) string {
	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	writeSequence(&sb, codes)

	return sb.String()
}

// Colorize wraps str in the codes and appends a reset.
// It returns str unchanged when colour is disabled.
func Colorize(str string, codes ...Code) string {
	return colorize(str, true, codes)
}

// ColorizeNoReset is Colorize without the trailing reset, for callers that
// continue styling the following text.
func ColorizeNoReset(str string, codes ...Code) string {
	return colorize(str, false, codes)
}

func colorize(str string, withReset bool, codes []Code) string {
	if !enabled || len(codes) == 0 {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	writeSequence(&sb, codes)
	sb.WriteString(str)

	if withReset {
		sb.WriteString(reset)
	}

	return sb.String()
}

func writeSequence(sb *strings.Builder, codes []Code) {
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}

func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
