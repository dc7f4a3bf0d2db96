// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/plumb/internal/progress"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
)

// ErrTUI is returned when the terminal UI fails.
var ErrTUI = errors.New("terminal UI error")

var _ progress.Reporter = (*Reporter)(nil)

// Reporter forwards progress events to a running bubbletea program.
type Reporter struct {
	program *tea.Program
	closed  bool
	mu      sync.RWMutex
}

// Report implements progress.Reporter.
func (r *Reporter) Report(event progress.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return
	}

	r.program.Send(EventMsg{Event: event})
}

// Close implements progress.Reporter.
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

// Runner runs a pipeline while a bubbletea program displays its progress.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
}

// NewRunner creates a Runner for pipeline p drawing to out.
// The view is drawn inline, so the final state stays on screen when the pipeline ends.
func NewRunner(ctx context.Context, p *runbatch.Pipeline, out io.Writer, opts ...tea.ProgramOption) *Runner {
	model := NewModel(p.GetLabel())

	for i, stage := range p.Stages {
		model.node([]string{p.GetLabel(), runbatch.StageName(i, stage)})
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out)}, opts...)
	program := tea.NewProgram(model, opts...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: &Reporter{program: program},
	}
}

type outcome struct {
	out     *runbatch.Output
	results runbatch.Results
	err     error
}

// Run runs the pipeline and the UI together. Quitting the UI early cancels the pipeline.
func (r *Runner) Run(ctx context.Context, p *runbatch.Pipeline) (*runbatch.Output, runbatch.Results, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome, 1)

	go func() {
		out, results, err := p.RunWithProgress(ctx, r.reporter)
		r.program.Send(CompletedMsg{Results: results})
		done <- outcome{out: out, results: results, err: err}
	}()

	_, uiErr := r.program.Run()

	if !r.model.Completed() {
		cancel()
	}

	r.reporter.Close()

	res := <-done

	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return res.out, res.results, errors.Join(res.err, ErrTUI, uiErr)
	}

	return res.out, res.results, res.err
}
