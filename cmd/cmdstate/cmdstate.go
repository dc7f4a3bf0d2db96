// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate holds the global flags shared by every subcommand and
// builds the resolver they select.
package cmdstate

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/plumb/internal/commandinpath"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/urfave/cli/v3"
)

const (
	// ShadowingFlag selects which duplicate executable wins.
	ShadowingFlag = "shadowing"
	// ExecutableOnlyFlag limits the index to files with an execute bit.
	ExecutableOnlyFlag = "executable-only"
	// LogJSONFlag switches the logger to JSON.
	LogJSONFlag = "log-json"
)

// GlobalFlags returns the flags accepted by the root command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ShadowingFlag,
			Usage:   "Which duplicate executable name wins when scanning the search path: first or last",
			Value:   pathindex.LastWins.String(),
			Sources: cli.EnvVars("PLUMB_SHADOWING"),
			Validator: func(s string) error {
				_, err := pathindex.ParseShadowPolicy(s)
				return err
			},
		},
		&cli.BoolFlag{
			Name:    ExecutableOnlyFlag,
			Aliases: []string{"x"},
			Usage:   "Only index regular files with an execute permission bit",
			Sources: cli.EnvVars("PLUMB_EXECUTABLE_ONLY"),
		},
		&cli.BoolFlag{
			Name:  LogJSONFlag,
			Usage: "Write logs as JSON to the error writer",
		},
	}
}

// Before installs the logger selected by the global flags.
func Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool(LogJSONFlag) {
		return ctxlog.New(ctx, ctxlog.NewJSON(cmd.Root().ErrWriter)), nil
	}

	return ctx, nil
}

// IndexOptions returns the index options selected by the global flags.
func IndexOptions(cmd *cli.Command) ([]pathindex.Option, error) {
	policy, err := pathindex.ParseShadowPolicy(cmd.String(ShadowingFlag))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", ShadowingFlag, err)
	}

	opts := []pathindex.Option{pathindex.WithShadowing(policy)}

	if cmd.Bool(ExecutableOnlyFlag) {
		opts = append(opts, pathindex.WithExecutableOnly())
	}

	return opts, nil
}

// NewResolver snapshots the process environment and indexes its search path.
// extra options are applied after the global flags.
func NewResolver(ctx context.Context, cmd *cli.Command, extra ...pathindex.Option) (*commandinpath.Resolver, error) {
	opts, err := IndexOptions(cmd)
	if err != nil {
		return nil, err
	}

	r := commandinpath.New(ctx, append(opts, extra...)...)

	if skipped := r.Index().SkippedErrors(); len(skipped) > 0 {
		ctxlog.Debug(ctx, "search path entries skipped", "count", len(skipped))
	}

	return r, nil
}
