// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/plumb/internal/color"
)

// OutputOptions controls what is included in the output.
type OutputOptions struct {
	IncludeStdOut      bool // Whether to include stdout in the output
	IncludeStdErr      bool // Whether to include stderr in the output
	ShowSuccessDetails bool // Whether to show details for successful stages
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdOut:      false,
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
	}
}

// WriteResults writes the results as an indented tree to w.
func WriteResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResultWithIndent(w, r, "", options); err != nil {
			return err
		}
	}

	return nil
}

func writeResultWithIndent(w io.Writer, r *Result, indent string, options *OutputOptions) error {
	var statusStr, labelPrefix string

	switch r.Status {
	case ResultStatusSkipped:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = style(color.Bold, color.FgYellow)
	case ResultStatusError:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = style(color.Bold, color.FgRed)
	case ResultStatusSuccess:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = style(color.Bold, color.FgGreen)
	default:
		statusStr = color.Colorize("?", color.FgWhite)
	}

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s%s %s%s%s", indent, statusStr, labelPrefix, label, style(color.Reset))

	if r.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit code: %d)", r.ExitCode)
	}

	sb.WriteString("\n")

	if r.Error != nil && !errors.Is(r.Error, ErrResultChildrenHasError) {
		errColor := color.FgWhite

		switch r.Status {
		case ResultStatusSkipped:
			errColor = color.FgYellow
		case ResultStatusError:
			errColor = color.FgRed
		}

		fmt.Fprintf(&sb, "%s  %s %s%s\n",
			indent,
			color.ColorizeNoReset("➜ Error:", errColor),
			r.Error.Error(),
			style(color.Reset),
		)
	}

	// Details are for failed leaves unless success details are asked for.
	showDetails := (r.Status == ResultStatusError || options.ShowSuccessDetails) && len(r.Children) == 0

	if showDetails && options.IncludeStdOut && len(r.StdOut) > 0 {
		fmt.Fprintf(&sb, "%s  ➜ Output:\n", indent)
		sb.WriteString(formatOutput(r.StdOut, indent+"     "))
	}

	if showDetails && options.IncludeStdErr && len(r.StdErr) > 0 {
		fmt.Fprintf(&sb, "%s  %s\n", indent, color.Colorize("➜ Error Output:", color.FgHiRed))
		sb.WriteString(formatOutput(r.StdErr, indent+"     "))
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	for _, child := range r.Children {
		if err := writeResultWithIndent(w, child, indent+"  ", options); err != nil {
			return err
		}
	}

	return nil
}

// style returns the control sequence for codes, or nothing when colour is disabled.
func style(codes ...color.Code) string {
	if !color.Enabled() {
		return ""
	}

	return color.ControlString(codes...)
}

// formatOutput indents every non-empty line of output.
func formatOutput(output []byte, indent string) string {
	text := strings.TrimSuffix(string(output), "\n")
	lines := strings.Split(text, "\n")

	sb := strings.Builder{}
	sb.Grow(len(output) + len(lines)*(len(indent)+1))

	for _, line := range lines {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
