// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"io"
	"os"
	"slices"
)

// ResultStatus is the outcome of one stage or pipeline.
type ResultStatus int

const (
	// ResultStatusUnknown is the zero value.
	ResultStatusUnknown ResultStatus = iota
	// ResultStatusSuccess means the stage ran without error.
	ResultStatusSuccess
	// ResultStatusError means the stage failed.
	ResultStatusError
	// ResultStatusSkipped means the stage did not run because an earlier stage failed.
	ResultStatusSkipped
)

// String implements fmt.Stringer.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	case ResultStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result represents the outcome of running a stage or pipeline.
type Result struct {
	Label    string       // Label of the stage or pipeline
	ExitCode int          // Exit code of the stage
	Error    error        // Error, if any
	StdOut   []byte       // Output from the stage
	StdErr   []byte       // Error output from the stage
	Status   ResultStatus // Outcome
	Children Results      // Per stage results of a pipeline
}

// Results is a slice of Result pointers, used to represent multiple results.
type Results []*Result

// HasError reports whether any result, or any nested result, failed.
// Non-zero exit codes alone are not failures.
func (r Results) HasError() bool {
	for v := range slices.Values(r) {
		if v.Error != nil || v.Status == ResultStatusError {
			return true
		}

		if v.Children.HasError() {
			return true
		}
	}

	return false
}

// Print outputs the results to stdout with default options.
func (r Results) Print() error {
	return WriteResults(os.Stdout, r, nil)
}

// Write outputs the results to the specified writer with default options.
func (r Results) Write(w io.Writer) error {
	return WriteResults(w, r, nil)
}

// WriteWithOptions outputs the results to the specified writer with the specified options.
func (r Results) WriteWithOptions(w io.Writer, options *OutputOptions) error {
	return WriteResults(w, r, options)
}

func resultFromOutput(label string, out *Output, err error) *Result {
	res := &Result{
		Label:  label,
		Status: ResultStatusSuccess,
		Error:  err,
	}

	if out != nil {
		res.StdOut = out.StdOut
		res.StdErr = out.StdErr
		res.ExitCode = out.ExitCode
	}

	if err != nil {
		res.Status = ResultStatusError
		if out == nil {
			res.ExitCode = -1
		}
	}

	return res
}
