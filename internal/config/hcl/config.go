// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hcl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ConfigFileExt is the extension of HCL pipeline files.
const ConfigFileExt = ".plumb.hcl"

var (
	// ErrNoConfigFile is returned when no `.plumb.hcl` file is found in the specified directory.
	ErrNoConfigFile = errors.New("no `.plumb.hcl` file found in the specified directory")
	// ErrParseConfigFile is returned when a file is not valid HCL or does not match the pipeline schema.
	ErrParseConfigFile = errors.New("failed to parse pipeline file")
	// ErrReadConfigFile is returned when a file cannot be read.
	ErrReadConfigFile = errors.New("failed to read pipeline file")
	// ErrDuplicatePipeline is returned when two pipeline blocks share a name.
	ErrDuplicatePipeline = errors.New("duplicate pipeline name")
)

// EvalContext returns the evaluation context for pipeline files.
// The environment snapshot is exposed as the `env` object.
func EvalContext(snap *environ.Snapshot) *hcl.EvalContext {
	vars := make(map[string]cty.Value, snap.Len())
	for k, v := range snap.Map() {
		vars[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
		Functions: map[string]function.Function{
			"coalesce":  stdlib.CoalesceFunc,
			"concat":    stdlib.ConcatFunc,
			"format":    stdlib.FormatFunc,
			"join":      stdlib.JoinFunc,
			"lower":     stdlib.LowerFunc,
			"split":     stdlib.SplitFunc,
			"trimspace": stdlib.TrimSpaceFunc,
			"upper":     stdlib.UpperFunc,
		},
	}
}

// Decode parses and decodes the content of one pipeline file.
func Decode(filename string, src []byte, snap *environ.Snapshot) (*File, error) {
	f, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParseConfigFile, multierror.Append(nil, diags.Errs()...))
	}

	var file File

	if diags := gohcl.DecodeBody(f.Body, EvalContext(snap), &file); diags.HasErrors() {
		return nil, errors.Join(ErrParseConfigFile, multierror.Append(nil, diags.Errs()...))
	}

	return &file, nil
}

// LoadFile reads and decodes one pipeline file from the filesystem returned by FsFactory.
func LoadFile(ctx context.Context, filename string, snap *environ.Snapshot) (*File, error) {
	return LoadFileFs(ctx, FsFactory(), filename, snap)
}

// LoadFileFs reads and decodes one pipeline file from fs.
func LoadFileFs(ctx context.Context, fs afero.Fs, filename string, snap *environ.Snapshot) (*File, error) {
	content, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.Join(ErrReadConfigFile, err)
	}

	ctxlog.Debug(ctx, "decoding pipeline file", "file", filename, "bytes", len(content))

	return Decode(filename, content, snap)
}

// LoadDir decodes every `.plumb.hcl` file in dir, in name order, and merges their pipelines.
// Files are read from the filesystem returned by FsFactory.
func LoadDir(ctx context.Context, dir string, snap *environ.Snapshot) (*File, error) {
	return LoadDirFs(ctx, FsFactory(), dir, snap)
}

// LoadDirFs is LoadDir reading from fs.
func LoadDirFs(ctx context.Context, fs afero.Fs, dir string, snap *environ.Snapshot) (*File, error) {
	matches, err := afero.Glob(fs, filepath.Join(dir, "*"+ConfigFileExt))
	if err != nil {
		// the only error we expect here is ErrBadPattern, which should never happen as it is a constant.
		panic(err)
	}

	if len(matches) == 0 {
		return nil, ErrNoConfigFile
	}

	var (
		merged File
		result error
	)

	seen := make(map[string]string)

	for _, filename := range matches {
		f, err := LoadFileFs(ctx, fs, filename, snap)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		for _, p := range f.Pipelines {
			if first, ok := seen[p.Name]; ok {
				result = multierror.Append(result,
					fmt.Errorf("%w: %q in %s, first declared in %s", ErrDuplicatePipeline, p.Name, filename, first))

				continue
			}

			seen[p.Name] = filename
			merged.Pipelines = append(merged.Pipelines, p)
		}
	}

	if result != nil {
		return nil, result
	}

	return &merged, nil
}

// Pipeline returns the pipeline called name, or the only pipeline when name is empty.
func (f *File) Pipeline(name string) (*PipelineBlock, bool) {
	if name == "" {
		if len(f.Pipelines) == 1 {
			return f.Pipelines[0], true
		}

		return nil, false
	}

	for _, p := range f.Pipelines {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// Names returns the pipeline names in declaration order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Pipelines))
	for _, p := range f.Pipelines {
		names = append(names, p.Name)
	}

	return names
}
