// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathindex

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrSymlinkLoop is recorded when a symbolic link leads back to one of its ancestors.
	ErrSymlinkLoop = errors.New("symbolic link loop")
	// ErrMaxDepth is recorded when a directory is deeper than the configured limit.
	ErrMaxDepth = errors.New("maximum walk depth exceeded")
)

// Index maps executable names to absolute locations. It is immutable once built.
type Index struct {
	entries    map[string]string
	candidates map[string][]string
	skipped    *multierror.Error
	policy     ShadowPolicy
}

// SplitSearchPath splits a search path on the host list separator, dropping empty elements.
func SplitSearchPath(searchPath string) []string {
	parts := strings.Split(searchPath, string(os.PathListSeparator))

	return slices.DeleteFunc(parts, func(s string) bool {
		return s == ""
	})
}

// Build scans every directory of searchPath on fs and returns the resulting index.
// It never fails: unreadable entries are skipped and reported by Skipped.
func Build(ctx context.Context, fs afero.Fs, searchPath string, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &builder{
		fs:   fs,
		opts: o,
		idx: &Index{
			entries:    make(map[string]string),
			candidates: make(map[string][]string),
			policy:     o.policy,
		},
	}

	logger := ctxlog.Logger(ctx).With("shadowing", o.policy.String())

	for _, dir := range SplitSearchPath(searchPath) {
		if err := ctx.Err(); err != nil {
			b.skip(ctx, dir, err)
			break
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			b.skip(ctx, dir, err)
			continue
		}

		logger.Debug("scanning search path directory", "dir", abs)
		b.walkRoot(ctx, abs)
	}

	logger.Debug("index built", "names", len(b.idx.entries), "skipped", len(b.idx.SkippedErrors()))

	return b.idx
}

type builder struct {
	fs   afero.Fs
	opts options
	idx  *Index
}

func (b *builder) skip(ctx context.Context, path string, err error) {
	ctxlog.Debug(ctx, "skipping entry", "path", path, "error", err)
	b.idx.skipped = multierror.Append(b.idx.skipped, fmt.Errorf("%s: %w", path, err))
}

func (b *builder) walkRoot(ctx context.Context, root string) {
	info, err := b.fs.Stat(root)
	if err != nil {
		b.skip(ctx, root, err)
		return
	}

	if !info.IsDir() {
		b.record(filepath.Base(root), root, info)
		return
	}

	b.walkDir(ctx, root, info, nil)
}

// walkDir lists dir and descends into subdirectories. ancestors holds the
// directories above dir, used to detect loops through symbolic links.
func (b *builder) walkDir(ctx context.Context, dir string, info os.FileInfo, ancestors []os.FileInfo) {
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			b.skip(ctx, dir, ErrSymlinkLoop)
			return
		}
	}

	if len(ancestors) >= b.opts.maxDepth {
		b.skip(ctx, dir, ErrMaxDepth)
		return
	}

	list, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		b.skip(ctx, dir, err)
		return
	}

	ancestors = append(ancestors, info)

	for _, entry := range list {
		name := entry.Name()
		if !utf8.ValidString(name) {
			continue
		}

		path := filepath.Join(dir, name)

		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := b.fs.Stat(path)
			if err != nil {
				b.skip(ctx, path, err)
				continue
			}

			entry = target
		}

		if entry.IsDir() {
			b.walkDir(ctx, path, entry, slices.Clip(ancestors))
			continue
		}

		b.record(name, path, entry)
	}
}

func (b *builder) record(name, path string, info os.FileInfo) {
	if b.opts.executableOnly && !isExecutable(info) {
		return
	}

	// A directory listed twice in the search path yields the same location again.
	if !slices.Contains(b.idx.candidates[name], path) {
		b.idx.candidates[name] = append(b.idx.candidates[name], path)
	}

	if _, exists := b.idx.entries[name]; exists && b.opts.policy == FirstWins {
		return
	}

	b.idx.entries[name] = path
}

func isExecutable(info os.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}

	if runtime.GOOS == "windows" {
		return true
	}

	return info.Mode().Perm()&0o111 != 0
}

// Lookup returns the location stored for name.
func (i *Index) Lookup(name string) (string, bool) {
	loc, ok := i.entries[name]
	return loc, ok
}

// Candidates returns every location seen for name, in scan order.
// The first or last element is the one Lookup returns, depending on the policy.
func (i *Index) Candidates(name string) []string {
	return slices.Clone(i.candidates[name])
}

// Names returns the indexed names in sorted order.
func (i *Index) Names() []string {
	return slices.Sorted(maps.Keys(i.entries))
}

// Len returns the number of indexed names.
func (i *Index) Len() int {
	return len(i.entries)
}

// Entries returns a copy of the name to location mapping.
func (i *Index) Entries() map[string]string {
	return maps.Clone(i.entries)
}

// Policy returns the shadow policy the index was built with.
func (i *Index) Policy() ShadowPolicy {
	return i.policy
}

// Skipped returns the entries that could not be read during the build, or nil.
func (i *Index) Skipped() error {
	return i.skipped.ErrorOrNil()
}

// SkippedErrors returns the individual errors recorded during the build.
func (i *Index) SkippedErrors() []error {
	if i.skipped == nil {
		return nil
	}

	return slices.Clone(i.skipped.Errors)
}

// Equal reports whether both indexes hold the same mapping.
func (i *Index) Equal(other *Index) bool {
	if i == nil || other == nil {
		return i == other
	}

	return maps.Equal(i.entries, other.entries)
}

// Fingerprint hashes the mapping. Equal indexes have equal fingerprints.
func (i *Index) Fingerprint() uint64 {
	d := xxhash.New()

	for _, name := range i.Names() {
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(i.entries[name])
		_, _ = d.Write([]byte{0})
	}

	return d.Sum64()
}
