// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config implements the config command, which prints example pipeline
// files, checks pipeline files without running them and evaluates HCL expressions.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/plumb/cmd/cmdstate"
	"github.com/matt-FFFFFF/plumb/internal/config"
	"github.com/matt-FFFFFF/plumb/internal/config/hcl"
	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileArg      = "file"
	formatFlag   = "format"
	pipelineFlag = "pipeline"
)

const exampleYAML = `name: sources
description: list go sources in the current directory
shadowing: first
stages:
  - exec: ls
    args: ["-1"]
  - name: only go
    exec: grep
    args: ["\\.go$"]
    success_exit_codes: [0, 1]
`

const exampleHCL = `pipeline "sources" {
  description = "list go sources in the home directory"
  shadowing   = "first"

  stage {
    exec = "ls"
    args = ["-1", env.HOME]
  }

  stage {
    name               = "only go"
    exec               = "grep"
    args               = ["\\.go$"]
    success_exit_codes = [0, 1]
  }
}
`

// FsFactory returns the filesystem pipeline files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// NewConfigCmd returns the config command.
func NewConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Get info on the pipeline file format and check pipeline files",
		Commands: []*cli.Command{
			{
				Name:  "example",
				Usage: "Print an example pipeline file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    formatFlag,
						Aliases: []string{"f"},
						Usage:   "Output format: yaml or hcl",
						Value:   "yaml",
					},
				},
				Action: exampleAction,
			},
			{
				Name:  "validate",
				Usage: "Check that a pipeline file decodes and every stage resolves",
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
						Usage:   "Name of the pipeline to check when the file declares more than one",
					},
				},
				Action: validateAction,
			},
			{
				Name:      "eval",
				Usage:     "Evaluate an HCL expression as a pipeline file would, or start a prompt with no expression",
				ArgsUsage: "[EXPRESSION]",
				Action:    evalAction,
			},
		},
	}
}

func exampleAction(_ context.Context, cmd *cli.Command) error {
	switch cmd.String(formatFlag) {
	case "yaml", "yml":
		fmt.Fprint(cmd.Root().Writer, exampleYAML) // nolint:errcheck
	case "hcl":
		fmt.Fprint(cmd.Root().Writer, exampleHCL) // nolint:errcheck
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q, expected yaml or hcl", cmd.String(formatFlag)), 1)
	}

	return nil
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	fileName := cmd.StringArg(fileArg)
	if fileName == "" {
		return cli.Exit("Please provide a pipeline file to check", 1)
	}

	def, err := config.LoadDefinition(ctx, FsFactory(), fileName, cmd.String(pipelineFlag), environ.FromOS())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var extra []pathindex.Option

	policy, ok, err := def.ShadowPolicy()
	if err != nil {
		return cli.Exit(err.Error(), 1)
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
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(cmd.Root().Writer, "%s: pipeline %q is valid with %d stages\n", fileName, p.Label, p.Len()) // nolint:errcheck

	return nil
}

func evalAction(_ context.Context, cmd *cli.Command) error {
	snap := environ.FromOS()

	if !cmd.Args().Present() {
		if err := hcl.EnterDebugMode(snap, cmd.Root().Writer); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return nil
	}

	out, err := hcl.Evaluate(strings.Join(cmd.Args().Slice(), " "), snap)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(cmd.Root().Writer, out) // nolint:errcheck

	return nil
}
