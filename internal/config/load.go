// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/plumb/internal/config/hcl"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
	"github.com/spf13/afero"
)

var (
	// ErrInvalidYaml is returned when a YAML file cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrUnknownFileType is returned when the file extension is not a supported pipeline format.
	ErrUnknownFileType = errors.New("unknown pipeline file type, expected .yaml, .yml or " + hcl.ConfigFileExt)
	// ErrReadFile is returned when a pipeline file cannot be read.
	ErrReadFile = errors.New("failed to read pipeline file")
	// ErrPipelineNotFound is returned when the requested pipeline is not in the file.
	ErrPipelineNotFound = errors.New("pipeline not found")
)

// ParseYAML decodes a YAML pipeline definition. Unknown fields are rejected.
func ParseYAML(ctx context.Context, data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.UnmarshalContext(ctx, data, &def, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	return &def, nil
}

// BuildFromYAML creates a pipeline from YAML configuration.
func BuildFromYAML(ctx context.Context, data []byte, r Resolver) (*runbatch.Pipeline, error) {
	def, err := ParseYAML(ctx, data)
	if err != nil {
		return nil, err
	}

	return def.Build(ctx, r)
}

// LoadDefinition reads the pipeline called name from path.
// An empty name selects the only pipeline in the file.
//
// The format follows the extension. A directory is read as a set of
// `.plumb.hcl` files.
func LoadDefinition(ctx context.Context, fs afero.Fs, path, name string, snap *environ.Snapshot) (*Definition, error) {
	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	if isDir {
		f, err := hcl.LoadDirFs(ctx, fs, path, snap)
		if err != nil {
			return nil, err
		}

		return pick(f, path, name)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	ctxlog.Debug(ctx, "loading pipeline file", "file", path, "bytes", len(data))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		def, err := ParseYAML(ctx, data)
		if err != nil {
			return nil, err
		}

		if name != "" && def.Name != name {
			return nil, fmt.Errorf("%w: %q in %s", ErrPipelineNotFound, name, path)
		}

		return def, nil

	case ".hcl":
		f, err := hcl.Decode(path, data, snap)
		if err != nil {
			return nil, err
		}

		return pick(f, path, name)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, path)
	}
}

// Load reads a pipeline file and builds the pipeline with r.
func Load(ctx context.Context, fs afero.Fs, path string, snap *environ.Snapshot, r Resolver) (*runbatch.Pipeline, error) {
	def, err := LoadDefinition(ctx, fs, path, "", snap)
	if err != nil {
		return nil, err
	}

	return def.Build(ctx, r)
}

func pick(f *hcl.File, path, name string) (*Definition, error) {
	p, ok := f.Pipeline(name)
	if !ok {
		if name == "" {
			return nil, fmt.Errorf("%w: %s declares %d pipelines %v, choose one by name",
				ErrPipelineNotFound, path, len(f.Pipelines), f.Names())
		}

		return nil, fmt.Errorf("%w: %q in %s", ErrPipelineNotFound, name, path)
	}

	return FromHCL(p), nil
}
