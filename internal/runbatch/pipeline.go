// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/progress"
)

// Pipeline runs its stages one after another, feeding the output of each stage to the next.
type Pipeline struct {
	Label  string     // Label of the pipeline
	Stages []Runnable // Stages in run order
}

// NewPipeline creates a Pipeline with the given stages.
func NewPipeline(label string, stages ...Runnable) *Pipeline {
	return &Pipeline{
		Label:  label,
		Stages: stages,
	}
}

// Append adds stages to the end of the pipeline.
func (p *Pipeline) Append(stages ...Runnable) *Pipeline {
	p.Stages = append(p.Stages, stages...)
	return p
}

// GetLabel returns the pipeline label.
func (p *Pipeline) GetLabel() string {
	return p.Label
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.Stages)
}

// Run runs the pipeline and returns the output of the final stage.
// A failure is returned as *StageError naming the stage responsible.
func (p *Pipeline) Run(ctx context.Context) (*Output, error) {
	out, _, err := p.RunWithResults(ctx)
	return out, err
}

// RunWithResults is Run that also reports the outcome of every stage.
// The returned Results holds a single pipeline result whose children are the stages.
func (p *Pipeline) RunWithResults(ctx context.Context) (*Output, Results, error) {
	return p.RunWithProgress(ctx, progress.NewNullReporter())
}

// RunWithProgress is RunWithResults that also sends stage lifecycle events to reporter.
// The reporter is not closed.
//
// A stage that wrote to standard error is reported once the next stage has refused its
// input, so it is reported failed rather than completed.
func (p *Pipeline) RunWithProgress(ctx context.Context, reporter progress.Reporter) (*Output, Results, error) {
	logger := ctxlog.Logger(ctx).With("runnableType", "Pipeline", "label", p.Label)
	ev := &stageEvents{reporter: reporter, pipeline: p.Label}

	ev.report(nil, progress.EventStarted, "pipeline started", progress.EventData{})

	parent := &Result{
		Label:    p.Label,
		Status:   ResultStatusSuccess,
		Children: make(Results, 0, len(p.Stages)),
	}

	if len(p.Stages) == 0 {
		parent.Status = ResultStatusError
		parent.Error = ErrEmptyPipeline
		parent.ExitCode = -1

		ev.report(nil, progress.EventFailed, "pipeline failed", progress.EventData{ExitCode: -1, Error: ErrEmptyPipeline})

		return nil, Results{parent}, ErrEmptyPipeline
	}

	var (
		prev   *Output
		runErr *StageError
	)

	for i, stage := range p.Stages {
		if runErr != nil {
			parent.Children = append(parent.Children, &Result{
				Label:  stage.GetLabel(),
				Status: ResultStatusSkipped,
				Error:  ErrSkipOnError,
			})
			ev.stage(i, stage, progress.EventSkipped, "skipped after an earlier failure", progress.EventData{})

			continue
		}

		if err := ctx.Err(); err != nil {
			logger.Debug("context done before stage", "index", i, "error", err)

			runErr = &StageError{Index: i, Label: stage.GetLabel(), Err: err}
			parent.Children = append(parent.Children, resultFromOutput(stage.GetLabel(), nil, err))
			ev.stage(i, stage, progress.EventFailed, "stage not started", progress.EventData{ExitCode: -1, Error: err})

			continue
		}

		logger.Debug("running stage", "index", i, "stage", stage.GetLabel())

		if !prev.HasStdErr() {
			ev.stage(i, stage, progress.EventStarted, "stage started", progress.EventData{})
		}

		out, err := stage.RunChained(ctx, prev)

		var upstream *UpstreamError
		if errors.As(err, &upstream) && i > 0 {
			logger.Debug("stage refused to run, previous stage wrote to stderr", "index", i)

			runErr = &StageError{Index: i - 1, Label: p.Stages[i-1].GetLabel(), Err: upstream}
			failed := parent.Children[i-1]
			failed.Status = ResultStatusError
			failed.Error = upstream

			parent.Children = append(parent.Children, &Result{
				Label:  stage.GetLabel(),
				Status: ResultStatusSkipped,
				Error:  ErrSkipOnError,
			})
			ev.stage(i-1, p.Stages[i-1], progress.EventFailed, "stage wrote to stderr",
				progress.EventData{ExitCode: failed.ExitCode, Error: upstream})
			ev.stage(i, stage, progress.EventSkipped, "skipped after an earlier failure", progress.EventData{})

			continue
		}

		parent.Children = append(parent.Children, resultFromOutput(stage.GetLabel(), out, err))

		if line := lastLine(out.StdOutString()); line != "" {
			ev.stage(i, stage, progress.EventOutput, "stage output", progress.EventData{OutputLine: line})
		}

		if err != nil {
			logger.Debug("stage failed", "index", i, "error", err)

			runErr = &StageError{Index: i, Label: stage.GetLabel(), Err: err}
			ev.stage(i, stage, progress.EventFailed, "stage failed", progress.EventData{ExitCode: exitCode(out), Error: err})

			continue
		}

		// The next stage decides whether standard error text is a failure.
		if !out.HasStdErr() || i == len(p.Stages)-1 {
			ev.stage(i, stage, progress.EventCompleted, "stage completed", progress.EventData{ExitCode: out.ExitCode})
		}

		prev = out
	}

	if runErr != nil {
		parent.Status = ResultStatusError
		parent.Error = ErrResultChildrenHasError
		parent.ExitCode = -1

		ev.report(nil, progress.EventFailed, "pipeline failed", progress.EventData{ExitCode: -1, Error: runErr})

		return nil, Results{parent}, runErr
	}

	parent.StdOut = prev.StdOut
	parent.StdErr = prev.StdErr
	parent.ExitCode = prev.ExitCode

	logger.Debug("pipeline completed", "stages", len(p.Stages))
	ev.report(nil, progress.EventCompleted, "pipeline completed", progress.EventData{ExitCode: prev.ExitCode})

	return prev, Results{parent}, nil
}

// stageEvents builds progress events under the pipeline label.
type stageEvents struct {
	reporter progress.Reporter
	pipeline string
}

func (e *stageEvents) report(path []string, t progress.EventType, msg string, data progress.EventData) {
	e.reporter.Report(progress.Event{
		Path:      append([]string{e.pipeline}, path...),
		Type:      t,
		Message:   msg,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (e *stageEvents) stage(i int, r Runnable, t progress.EventType, msg string, data progress.EventData) {
	e.report([]string{StageName(i, r)}, t, msg, data)
}

// StageName is the name a stage is reported under: its index and label.
// Labels need not be unique within a pipeline.
func StageName(i int, r Runnable) string {
	return fmt.Sprintf("[%d] %s", i, r.GetLabel())
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}

	return strings.TrimSpace(s)
}

func exitCode(out *Output) int {
	if out == nil {
		return -1
	}

	return out.ExitCode
}

// String implements fmt.Stringer.
func (p *Pipeline) String() string {
	return fmt.Sprintf("%s (%d stages)", p.Label, len(p.Stages))
}
