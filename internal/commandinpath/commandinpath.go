// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath resolves executable names to invocables using an
// environment snapshot and the index of its search path.
package commandinpath

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
	"github.com/spf13/afero"
)

// ErrCommandNotFound is returned when a name is not in the index.
var ErrCommandNotFound = errors.New("command not found in search path")

// pathExtKey lists executable extensions on Windows.
const pathExtKey = "PATHEXT"

// Resolver ties an environment snapshot to the index built from its search path.
// It is read-only after construction and safe for concurrent use.
type Resolver struct {
	env   *environ.Snapshot
	index *pathindex.Index
}

// New snapshots the process environment and indexes its search path on the OS filesystem.
func New(ctx context.Context, opts ...pathindex.Option) *Resolver {
	return NewFromSnapshot(ctx, afero.NewOsFs(), environ.FromOS(), opts...)
}

// NewFromSnapshot indexes the search path of snap on fs.
func NewFromSnapshot(ctx context.Context, fs afero.Fs, snap *environ.Snapshot, opts ...pathindex.Option) *Resolver {
	idx := pathindex.Build(ctx, fs, snap.SearchPath(), opts...)

	ctxlog.Debug(ctx, "resolver ready", "executables", idx.Len(), "fingerprint", idx.Fingerprint())

	return &Resolver{
		env:   snap,
		index: idx,
	}
}

// Lookup returns the location of name.
// On Windows, names without an extension are also tried with each PATHEXT extension.
func (r *Resolver) Lookup(name string) (string, bool) {
	if p, ok := r.index.Lookup(name); ok {
		return p, true
	}

	if runtime.GOOS != "windows" {
		return "", false
	}

	for _, ext := range r.pathExt() {
		if p, ok := r.index.Lookup(name + ext); ok {
			return p, true
		}
	}

	return "", false
}

// Command returns an invocable for name with the given arguments.
// The invocable runs with the snapshot environment.
func (r *Resolver) Command(name string, args ...string) (*runbatch.Invocable, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}

	return runbatch.NewInvocable(name, p).
		Args(args...).
		WithEnv(r.env.Environ()), nil
}

// Env returns the environment snapshot.
func (r *Resolver) Env() *environ.Snapshot {
	return r.env
}

// Index returns the search path index.
func (r *Resolver) Index() *pathindex.Index {
	return r.index
}

func (r *Resolver) pathExt() []string {
	v, ok := r.env.Lookup(pathExtKey)
	if !ok || v == "" {
		v = ".COM;.EXE;.BAT;.CMD"
	}

	exts := strings.Split(v, ";")
	res := make([]string, 0, len(exts)*2)

	for _, ext := range exts {
		if ext == "" {
			continue
		}

		res = append(res, strings.ToLower(ext), strings.ToUpper(ext))
	}

	return res
}
