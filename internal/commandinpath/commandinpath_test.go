// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandinpath

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemResolver(t *testing.T, opts ...pathindex.Option) *Resolver {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/usr/bin", 0o755))
	require.NoError(t, fs.MkdirAll("/opt/bin", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/ls", nil, 0o755))
	require.NoError(t, afero.WriteFile(fs, "/opt/bin/ls", nil, 0o755))
	require.NoError(t, afero.WriteFile(fs, "/opt/bin/notes.txt", nil, 0o644))

	snap := environ.New([]string{
		"PATH=" + strings.Join([]string{"/usr/bin", "/opt/bin"}, string(os.PathListSeparator)),
		"FOO=bar",
	})

	return NewFromSnapshot(context.Background(), fs, snap, opts...)
}

func TestResolverCommand_Found(t *testing.T) {
	r := newMemResolver(t)

	cmd, err := r.Command("ls", "-l", "/tmp")
	require.NoError(t, err)
	assert.Equal(t, "ls", cmd.Name())
	assert.Equal(t, "/opt/bin/ls", cmd.Path(), "later search path entries shadow earlier ones by default")
	assert.Equal(t, []string{"-l", "/tmp"}, cmd.Arguments())
}

func TestResolverCommand_FirstWins(t *testing.T) {
	r := newMemResolver(t, pathindex.WithShadowing(pathindex.FirstWins))

	cmd, err := r.Command("ls")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ls", cmd.Path())
}

func TestResolverCommand_NotFound(t *testing.T) {
	r := newMemResolver(t)

	cmd, err := r.Command("nope")
	assert.Nil(t, cmd)
	require.ErrorIs(t, err, ErrCommandNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestResolverLookup_ExecutableOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not used on windows")
	}

	all := newMemResolver(t)
	_, ok := all.Lookup("notes.txt")
	assert.True(t, ok)

	exeOnly := newMemResolver(t, pathindex.WithExecutableOnly())
	_, ok = exeOnly.Lookup("notes.txt")
	assert.False(t, ok)
}

func TestResolver_Accessors(t *testing.T) {
	r := newMemResolver(t)

	assert.Equal(t, "bar", r.Env().Get("FOO"))
	assert.Equal(t, 2, r.Index().Len())
}

func TestResolverCommand_RunsWithSnapshotEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping process test on windows")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "show-env")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$PLUMB_TEST_VALUE\"\n"), 0o755))

	snap := environ.New([]string{"PATH=" + dir, "PLUMB_TEST_VALUE=from-snapshot"})
	r := NewFromSnapshot(context.Background(), afero.NewOsFs(), snap)

	cmd, err := r.Command("show-env")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := cmd.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-snapshot\n", out.StdOutString())
}

func TestNew_UsesProcessSearchPath(t *testing.T) {
	dir := t.TempDir()
	name := "plumb-test-tool"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o755))

	t.Setenv("PATH", dir)

	r := New(context.Background())

	p, ok := r.Lookup(name)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, name), p)
}
