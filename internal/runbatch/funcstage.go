// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
)

var _ Runnable = (*FuncStage)(nil)

// FuncStage is a pipeline stage that runs a Go function instead of a process.
// It obeys the same chaining rules as an Invocable.
type FuncStage struct {
	Label string        // Label used in results and errors
	Func  FuncStageFunc // The function to run
}

// FuncStageFunc is the function run by a FuncStage. stdin holds the previous stage's
// standard output, or nil for the first stage.
type FuncStageFunc func(ctx context.Context, stdin []byte) FuncStageReturn

// FuncStageReturn is the return type of a FuncStageFunc.
type FuncStageReturn struct {
	StdOut []byte // Bytes written to the next stage
	StdErr []byte // Any bytes here stop the pipeline
	Err    error  // Any error that occurred during execution
}

// NewFuncStage creates a FuncStage.
func NewFuncStage(label string, fn FuncStageFunc) *FuncStage {
	return &FuncStage{
		Label: label,
		Func:  fn,
	}
}

// GetLabel implements Runnable.
func (f *FuncStage) GetLabel() string {
	return f.Label
}

func (f *FuncStage) stage() {}

// RunChained implements Runnable. A panic in the function is returned as *ErrFuncStagePanic.
// If ctx is done first, ctx.Err() is returned and the function is left to finish on its own.
func (f *FuncStage) RunChained(ctx context.Context, input *Output) (*Output, error) {
	logger := ctxlog.Logger(ctx).With("runnableType", "FuncStage", "label", f.Label)

	if err := checkUpstream(input); err != nil {
		logger.Debug("previous stage wrote to stderr, not running function")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.Func == nil {
		logger.Debug("no function to run, returning success")
		return &Output{}, nil
	}

	var stdin []byte
	if input != nil {
		stdin = input.StdOut
	}

	// Buffered so the goroutine can always send and exit, even after we stop listening.
	frCh := make(chan FuncStageReturn, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("function stage panicked", "panic", r)

				frCh <- FuncStageReturn{Err: NewErrFuncStagePanic(r)}
			}
		}()

		frCh <- f.Func(ctx, stdin)
	}()

	select {
	case fr := <-frCh:
		out := &Output{
			StdOut: fr.StdOut,
			StdErr: fr.StdErr,
		}

		if fr.Err != nil {
			logger.Debug("function stage error", "error", fr.Err)

			out.ExitCode = -1

			return out, fr.Err
		}

		logger.Debug("function stage completed", "stdoutBytes", len(fr.StdOut), "stderrBytes", len(fr.StdErr))

		return out, nil

	case <-ctx.Done():
		logger.Debug("function stage context done", "error", ctx.Err())
		return nil, ctx.Err()
	}
}
