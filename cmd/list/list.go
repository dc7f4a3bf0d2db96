// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the list command.
package list

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/plumb/cmd/cmdstate"
	"github.com/matt-FFFFFF/plumb/internal/color"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/urfave/cli/v3"
)

const jsonFlag = "json"

// ErrMarshalIndex is returned when the index cannot be rendered as JSON.
var ErrMarshalIndex = errors.New("failed to marshal index")

// NewListCmd returns the command that prints the search path index.
func NewListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print every executable name in the search path and its location",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  jsonFlag,
				Usage: "Print the index as JSON",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	r, err := cmdstate.NewResolver(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := cmd.Root().Writer
	idx := r.Index()

	if !cmd.Bool(jsonFlag) {
		for _, name := range idx.Names() {
			p, _ := idx.Lookup(name)
			fmt.Fprintf(w, "%s\t%s\n", name, p) // nolint:errcheck
		}

		return nil
	}

	b, err := marshalIndex(idx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(w, string(b)) // nolint:errcheck

	return nil
}

func marshalIndex(idx *pathindex.Index) ([]byte, error) {
	entries := make(map[string]interface{}, idx.Len())
	for name, p := range idx.Entries() {
		entries[name] = p
	}

	skipped := make([]interface{}, 0, len(idx.SkippedErrors()))
	for _, err := range idx.SkippedErrors() {
		skipped = append(skipped, err.Error())
	}

	doc := map[string]interface{}{
		"shadowing":   idx.Policy().String(),
		"fingerprint": strconv.FormatUint(idx.Fingerprint(), 16),
		"entries":     entries,
		"skipped":     skipped,
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !color.Enabled()

	b, err := f.Marshal(doc)
	if err != nil {
		return nil, errors.Join(ErrMarshalIndex, err)
	}

	return b, nil
}
