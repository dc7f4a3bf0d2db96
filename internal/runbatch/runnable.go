// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
)

// Runnable is a pipeline stage. The set of implementations is closed:
// *Invocable runs an executable, *FuncStage runs a Go function.
type Runnable interface {
	// RunChained runs the stage with the previous stage's output, or nil for the first stage.
	// It must fail with *UpstreamError, without doing any work, if input carries standard error text.
	RunChained(ctx context.Context, input *Output) (*Output, error)
	// GetLabel returns a human readable name for the stage.
	GetLabel() string

	stage()
}

// Output is the captured result of one stage.
type Output struct {
	StdOut   []byte // Everything the stage wrote to standard output
	StdErr   []byte // Everything the stage wrote to standard error
	ExitCode int    // Process exit code, -1 if the process did not exit normally
}

// StdOutString returns standard output as text.
func (o *Output) StdOutString() string {
	if o == nil {
		return ""
	}

	return string(o.StdOut)
}

// StdErrString returns standard error as text.
func (o *Output) StdErrString() string {
	if o == nil {
		return ""
	}

	return string(o.StdErr)
}

// HasStdErr reports whether any standard error text was captured.
func (o *Output) HasStdErr() bool {
	return o != nil && len(o.StdErr) > 0
}

// checkUpstream applies the short-circuit rule shared by every stage.
func checkUpstream(input *Output) error {
	if input.HasStdErr() {
		return &UpstreamError{StdErr: string(input.StdErr)}
	}

	return nil
}
