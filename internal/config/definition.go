// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/plumb/internal/config/hcl"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
)

var (
	// ErrNoStages is returned when a pipeline has no stages.
	ErrNoStages = errors.New("no stages specified")
	// ErrNoExec is returned when a stage does not name an executable.
	ErrNoExec = errors.New("stage has no executable")
	// ErrResolveStage is returned when a stage executable cannot be resolved.
	ErrResolveStage = errors.New("failed to resolve stage")
)

// Resolver turns an executable name into an invocable.
type Resolver interface {
	Command(name string, args ...string) (*runbatch.Invocable, error)
}

// Definition represents one declarative pipeline.
type Definition struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Shadowing   string            `yaml:"shadowing"`
	Stages      []StageDefinition `yaml:"stages"`
}

// StageDefinition represents one stage of a pipeline.
type StageDefinition struct {
	Name             string   `yaml:"name"`
	Exec             string   `yaml:"exec"`
	Args             []string `yaml:"args"`
	SuccessExitCodes []int    `yaml:"success_exit_codes"`
}

// Label returns the stage name, or the executable when no name is set.
func (s StageDefinition) Label() string {
	if s.Name != "" {
		return s.Name
	}

	return s.Exec
}

// FromHCL converts a decoded HCL pipeline block.
func FromHCL(p *hcl.PipelineBlock) *Definition {
	def := &Definition{
		Name:        p.Name,
		Description: p.Description,
		Shadowing:   p.Shadowing,
		Stages:      make([]StageDefinition, 0, len(p.Stages)),
	}

	for _, s := range p.Stages {
		def.Stages = append(def.Stages, StageDefinition{
			Name:             s.Name,
			Exec:             s.Exec,
			Args:             s.Args,
			SuccessExitCodes: s.SuccessExitCodes,
		})
	}

	return def
}

// ShadowPolicy returns the shadowing policy the pipeline asks for.
// ok is false when the pipeline does not set one.
func (d *Definition) ShadowPolicy() (policy pathindex.ShadowPolicy, ok bool, err error) {
	if d.Shadowing == "" {
		return pathindex.LastWins, false, nil
	}

	policy, err = pathindex.ParseShadowPolicy(d.Shadowing)
	if err != nil {
		return policy, false, err
	}

	return policy, true, nil
}

// Validate reports every structural problem of the definition together.
func (d *Definition) Validate() error {
	var result error

	if len(d.Stages) == 0 {
		result = multierror.Append(result, ErrNoStages)
	}

	for i, s := range d.Stages {
		if s.Exec == "" {
			result = multierror.Append(result, fmt.Errorf("stage %d (%s): %w", i, s.Label(), ErrNoExec))
		}
	}

	if _, _, err := d.ShadowPolicy(); err != nil {
		result = multierror.Append(result, err)
	}

	return result
}

// Build resolves every stage with r and returns the pipeline.
// Unresolvable stages are reported together.
func (d *Definition) Build(ctx context.Context, r Resolver) (*runbatch.Pipeline, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	p := runbatch.NewPipeline(d.Name)

	var result error

	for i, s := range d.Stages {
		cmd, err := r.Command(s.Exec, s.Args...)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w %d (%s): %w", ErrResolveStage, i, s.Label(), err))
			continue
		}

		cmd.WithLabel(s.Label())

		if len(s.SuccessExitCodes) > 0 {
			cmd.WithSuccessExitCodes(s.SuccessExitCodes...)
		}

		ctxlog.Debug(ctx, "resolved stage", "pipeline", d.Name, "index", i, "path", cmd.Path())
		p.Append(cmd)
	}

	if result != nil {
		return nil, result
	}

	return p, nil
}
