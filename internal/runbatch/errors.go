// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
)

const maxBufferSize = 8 * 1024 * 1024 // 8MB

var (
	// ErrEmptyPipeline is returned when a pipeline has no stages.
	ErrEmptyPipeline = errors.New("pipeline has no stages")
	// ErrBufferOverflow is returned when a stream exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrFailedToWriteInput is returned when the previous output could not be written to standard input.
	ErrFailedToWriteInput = errors.New("failed to write input")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrTimeoutExceeded is returned when the process was killed because the context was done.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrSignalReceived is returned when a signal was relayed to the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrUnsuccessfulExitCode is returned when success exit codes are set and the process exited with another code.
	ErrUnsuccessfulExitCode = errors.New("unsuccessful exit code")
	// ErrSkipOnError marks stages that did not run because an earlier stage failed.
	ErrSkipOnError = errors.New("skip execution due to previous error")
	// ErrResultChildrenHasError is set on a pipeline result when a stage failed.
	ErrResultChildrenHasError = errors.New("result has children with errors")
)

// UpstreamError means the previous stage wrote to standard error, so this stage refused to run.
type UpstreamError struct {
	StdErr string // The previous stage's standard error, verbatim
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return "upstream stage wrote to stderr: " + e.StdErr
}

// StageError attributes a pipeline failure to one stage.
type StageError struct {
	Index int    // Zero-based position of the failing stage
	Label string // Label of the failing stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %v", e.Index, e.Label, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// ErrFuncStagePanic is returned when the function of a FuncStage panics.
type ErrFuncStagePanic struct {
	v any
}

// NewErrFuncStagePanic creates an ErrFuncStagePanic for the recovered value.
func NewErrFuncStagePanic(v any) error {
	return &ErrFuncStagePanic{v: v}
}

// Error implements the error interface.
func (e *ErrFuncStagePanic) Error() string {
	const prefix = "function stage panic:"

	switch x := e.v.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}

// Unwrap returns the panic value if it was an error.
func (e *ErrFuncStagePanic) Unwrap() error {
	if err, ok := e.v.(error); ok {
		return err
	}

	return nil
}
