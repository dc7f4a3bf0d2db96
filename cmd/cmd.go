// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/plumb"
	"github.com/matt-FFFFFF/plumb/cmd/cmdstate"
	"github.com/matt-FFFFFF/plumb/cmd/config"
	"github.com/matt-FFFFFF/plumb/cmd/exec"
	"github.com/matt-FFFFFF/plumb/cmd/list"
	"github.com/matt-FFFFFF/plumb/cmd/run"
	"github.com/matt-FFFFFF/plumb/cmd/which"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = NewRootCmd()

// NewRootCmd returns a fresh root command writing to stdout and stderr.
func NewRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			config.NewConfigCmd(),
			exec.NewExecCmd(),
			list.NewListCmd(),
			run.NewRunCmd(),
			which.NewWhichCmd(),
		},
		Flags:     cmdstate.GlobalFlags(),
		Before:    cmdstate.Before,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "plumb",
		Version:   plumb.Version + " (" + plumb.Commit + ")",
		Description: `Plumb finds executables in the search path and chains them into pipelines,
feeding the standard output of each stage to the standard input of the next.
A stage that writes to standard error stops the pipeline. Pipelines are declared
in YAML or HCL files and never parsed from shell syntax.`,
		Usage:     "plumb run pipeline.yaml",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}
