// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run command.
package run

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/plumb/cmd/cmdstate"
	"github.com/matt-FFFFFF/plumb/internal/config"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
	"github.com/matt-FFFFFF/plumb/internal/tui"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileArg                  = "file"
	pipelineFlag             = "pipeline"
	outputStdErrFlag         = "output-stderr"
	outputStdOutFlag         = "output-stdout"
	outputSuccessDetailsFlag = "output-success-details"
	resultsFlag              = "results"
	tuiFlag                  = "tui"
)

var (
	// ErrBuildConfig is returned when the pipeline cannot be built from the file.
	ErrBuildConfig = errors.New("failed to build pipeline")
)

// FsFactory returns the filesystem pipeline files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// TUIProgramOptions are extra options for the --tui program.
var TUIProgramOptions []tea.ProgramOption

// NewRunCmd returns the command that runs a pipeline defined in a file.
func NewRunCmd() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Run a pipeline defined in a YAML or HCL file",
		Description: "Run a pipeline defined in a YAML file, a .plumb.hcl file or a directory of .plumb.hcl files.",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "FILE",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    pipelineFlag,
				Aliases: []string{"p"},
				Usage:   "Name of the pipeline to run when the file declares more than one",
			},
			&cli.BoolFlag{
				Name:        outputSuccessDetailsFlag,
				Aliases:     []string{"success"},
				Usage:       "Include successful results in the output",
				DefaultText: "false",
				Value:       false,
			},
			&cli.BoolFlag{
				Name:        outputStdErrFlag,
				Aliases:     []string{"stderr"},
				Usage:       "Include stderr output in the results",
				Value:       true,
				DefaultText: "true",
			},
			&cli.BoolFlag{
				Name:        outputStdOutFlag,
				Aliases:     []string{"stdout"},
				Usage:       "Include stdout output in the results",
				DefaultText: "false",
				Value:       false,
			},
			&cli.BoolFlag{
				Name:  resultsFlag,
				Usage: "Print the per stage result tree to the error writer",
				Value: true,
			},
			&cli.BoolFlag{
				Name:    tuiFlag,
				Usage:   "Show live stage progress on the error writer while the pipeline runs",
				Sources: cli.EnvVars("PLUMB_TUI"),
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	fileName := cmd.StringArg(fileArg)
	if fileName == "" {
		return cli.Exit("Please provide a pipeline file to run", 1)
	}

	snap := environ.FromOS()

	def, err := config.LoadDefinition(ctx, FsFactory(), fileName, cmd.String(pipelineFlag), snap)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load pipeline file %s: %s", fileName, err.Error()), 1)
	}

	var extra []pathindex.Option

	policy, ok, err := def.ShadowPolicy()
	if err != nil {
		return cli.Exit(errors.Join(ErrBuildConfig, err).Error(), 1)
	}

	if ok {
		extra = append(extra, pathindex.WithShadowing(policy))
	}

	r, err := cmdstate.NewResolver(ctx, cmd, extra...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	p, err := def.Build(ctx, r)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s from file %s: %s", ErrBuildConfig.Error(), fileName, err.Error()), 1)
	}

	ctxlog.Info(ctx, "running pipeline", "pipeline", p.Label, "stages", p.Len())

	var (
		out     *runbatch.Output
		results runbatch.Results
		runErr  error
	)

	if cmd.Bool(tuiFlag) {
		out, results, runErr = tui.NewRunner(ctx, p, cmd.Root().ErrWriter, TUIProgramOptions...).Run(ctx, p)
	} else {
		out, results, runErr = p.RunWithResults(ctx)
	}
	if out != nil {
		cmd.Root().Writer.Write(out.StdOut) // nolint:errcheck
	}

	if cmd.Bool(resultsFlag) {
		opts := runbatch.DefaultOutputOptions()
		opts.IncludeStdErr = cmd.Bool(outputStdErrFlag)
		opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
		opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

		if err := results.WriteWithOptions(cmd.Root().ErrWriter, opts); err != nil {
			return cli.Exit("Failed to write results: "+err.Error(), 1)
		}
	}

	if runErr != nil {
		return cli.Exit(runErr.Error(), 1)
	}

	return nil
}
