// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/daylight-tools/radrun/internal/color"
)

// OutputOptions controls what is included in the result report.
type OutputOptions struct {
	IncludeStdErr      bool // Whether to include captured stderr
	ShowSuccessDetails bool // Whether to show details for successful tasks
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
	}
}

// WriteText writes a human-readable result tree to the provided writer:
// the run, its groups, and each group's tasks, with failure causes and
// captured stderr attached where present.
func WriteText(w io.Writer, res *RunResult, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	label := res.Title
	if res.RunID != "" {
		label = fmt.Sprintf("%s (%s)", res.Title, res.RunID)
	}

	writeStatusLine(w, res.Status, label, "", 0)
	writeErrorLine(w, res.Status, res.Err, "")

	for _, g := range res.Groups {
		if err := writeGroup(w, g, "  ", options); err != nil {
			return err
		}
	}

	return nil
}

func writeGroup(w io.Writer, g *GroupResult, indent string, options *OutputOptions) error {
	writeStatusLine(w, g.Status, g.Label, indent, 0)
	writeErrorLine(w, g.Status, g.Err, indent)

	for _, t := range g.Tasks {
		writeTask(w, t, indent+"  ", options)
	}

	return nil
}

func writeTask(w io.Writer, r *Result, indent string, options *OutputOptions) {
	writeStatusLine(w, r.Status, r.Label, indent, r.ExitCode)
	writeErrorLine(w, r.Status, r.Err, indent)

	showDetails := r.Status == StatusFailed || options.ShowSuccessDetails
	if showDetails && options.IncludeStdErr && len(r.Stderr) > 0 {
		fmt.Fprintf(w, "%s  %s\n", indent, color.Colorize("➜ Error Output:", color.FgHiRed)) // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.Stderr, indent+"     "))                         // nolint:errcheck
	}
}

func writeStatusLine(w io.Writer, status Status, label, indent string, exitCode int) {
	var statusStr, labelPrefix string

	switch status {
	case StatusSkipped:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	case StatusFailed:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	case StatusSuccess:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	default:
		statusStr = color.Colorize("?", color.FgWhite)
	}

	if label == "" {
		label = "[unnamed]"
	}

	fmt.Fprintf( // nolint:errcheck
		w,
		"%s%s %s%s%s",
		indent,
		statusStr,
		labelPrefix,
		label,
		color.ControlString(color.Reset),
	)

	if exitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", exitCode) // nolint:errcheck
	}

	fmt.Fprintln(w) // nolint:errcheck
}

func writeErrorLine(w io.Writer, status Status, err error, indent string) {
	if err == nil {
		return
	}

	// The group-level sentinel is redundant with the task errors below it.
	if errors.Is(err, ErrTaskFailed) {
		return
	}

	errColor := color.FgWhite

	switch status {
	case StatusSkipped:
		errColor = color.FgYellow
	case StatusFailed:
		errColor = color.FgRed
	}

	fmt.Fprintf( // nolint:errcheck
		w,
		"%s  %s %s%s\n",
		indent,
		color.ColorizeNoReset("➜ Error:", errColor),
		err.Error(),
		color.ControlString(color.Reset),
	)
}

// formatOutput formats multi-line output with proper indentation.
func formatOutput(output []byte, indent string) string {
	sb := strings.Builder{}
	lines := strings.Split(string(output), "\n")
	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
