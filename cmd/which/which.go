// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package which implements the which command.
package which

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/plumb/cmd/cmdstate"
	"github.com/urfave/cli/v3"
)

const allFlag = "all"

// NewWhichCmd returns the command that prints the location of executables.
func NewWhichCmd() *cli.Command {
	return &cli.Command{
		Name:      "which",
		Usage:     "Print the location of each NAME in the search path",
		ArgsUsage: "NAME [NAME...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    allFlag,
				Aliases: []string{"a"},
				Usage:   "Print every location of each NAME, in scan order",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Args().Present() {
		return cli.Exit("Please provide at least one executable name", 1)
	}

	r, err := cmdstate.NewResolver(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var missing int

	for _, name := range cmd.Args().Slice() {
		if cmd.Bool(allFlag) {
			candidates := r.Index().Candidates(name)
			if len(candidates) == 0 {
				missing++
				fmt.Fprintf(cmd.Root().ErrWriter, "%s not found\n", name) // nolint:errcheck

				continue
			}

			for _, c := range candidates {
				fmt.Fprintln(cmd.Root().Writer, c) // nolint:errcheck
			}

			continue
		}

		p, ok := r.Lookup(name)
		if !ok {
			missing++
			fmt.Fprintf(cmd.Root().ErrWriter, "%s not found\n", name) // nolint:errcheck

			continue
		}

		fmt.Fprintln(cmd.Root().Writer, p) // nolint:errcheck
	}

	if missing > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
