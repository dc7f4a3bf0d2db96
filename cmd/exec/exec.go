// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package exec implements the exec command.
package exec

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/plumb/cmd/cmdstate"
	"github.com/matt-FFFFFF/plumb/internal/commandinpath"
	"github.com/urfave/cli/v3"
)

// NewExecCmd returns the command that runs one executable standalone.
func NewExecCmd() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run NAME from the search path with ARGS and print its output",
		ArgsUsage: "NAME [ARGS...]",
		// Everything after NAME belongs to the child.
		SkipFlagParsing: true,
		Action:          actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Args().Present() {
		return cli.Exit("Please provide an executable name", 1)
	}

	r, err := cmdstate.NewResolver(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	inv, err := r.Command(cmd.Args().First(), cmd.Args().Tail()...)
	if errors.Is(err, commandinpath.ErrCommandNotFound) {
		return cli.Exit(err.Error(), 127)
	}

	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out, err := inv.Run(ctx)
	if out != nil {
		cmd.Root().Writer.Write(out.StdOut)    // nolint:errcheck
		cmd.Root().ErrWriter.Write(out.StdErr) // nolint:errcheck
	}

	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %s", inv.String(), err.Error()), 1)
	}

	if out.ExitCode != 0 {
		return cli.Exit("", out.ExitCode)
	}

	return nil
}
