// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathindex

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFsWithFiles creates the files on a MemMapFs, content is the file name
// prefixed with a tag so shadowed copies are distinguishable.
func memFsWithFiles(t *testing.T, files map[string]os.FileMode) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	for path, mode := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("tag:"+path), mode))
	}

	return fs
}

func searchPath(dirs ...string) string {
	return strings.Join(dirs, string(os.PathListSeparator))
}

func TestBuild_Union(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/one/ls":   0o755,
		"/one/cat":  0o755,
		"/two/grep": 0o755,
		"/three/wc": 0o755,
	})

	idx := Build(context.Background(), fs, searchPath("/one", "/two", "/three"))

	assert.Equal(t, []string{"cat", "grep", "ls", "wc"}, idx.Names())
	assert.Equal(t, map[string]string{
		"ls":   "/one/ls",
		"cat":  "/one/cat",
		"grep": "/two/grep",
		"wc":   "/three/wc",
	}, idx.Entries())
	assert.NoError(t, idx.Skipped())
}

func TestBuild_Shadowing(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/first/x":  0o755,
		"/second/x": 0o755,
	})

	tests := []struct {
		name   string
		opts   []Option
		policy ShadowPolicy
		want   string
	}{
		{
			name:   "default is last wins",
			opts:   nil,
			policy: LastWins,
			want:   "/second/x",
		},
		{
			name:   "first wins",
			opts:   []Option{WithShadowing(FirstWins)},
			policy: FirstWins,
			want:   "/first/x",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx := Build(context.Background(), fs, searchPath("/first", "/second"), tc.opts...)

			loc, ok := idx.Lookup("x")
			require.True(t, ok)
			assert.Equal(t, tc.want, loc)
			assert.Equal(t, tc.policy, idx.Policy())

			content, err := afero.ReadFile(fs, loc)
			require.NoError(t, err)
			assert.Equal(t, "tag:"+tc.want, string(content))

			assert.Equal(t, []string{"/first/x", "/second/x"}, idx.Candidates("x"))
		})
	}
}

func TestBuild_RepeatedDirectory(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/a/x": 0o755,
		"/b/x": 0o755,
	})

	idx := Build(context.Background(), fs, searchPath("/a", "/b", "/a"))

	assert.Equal(t, []string{"/a/x", "/b/x"}, idx.Candidates("x"))

	loc, ok := idx.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "/a/x", loc, "the last occurrence of a directory still shadows earlier ones")

	first := Build(context.Background(), fs, searchPath("/a", "/b", "/a"), WithShadowing(FirstWins))
	loc, ok = first.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "/a/x", loc)
}

func TestBuild_LookupAbsent(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{"/bin/ls": 0o755})
	idx := Build(context.Background(), fs, "/bin")

	loc, ok := idx.Lookup("nope")
	assert.False(t, ok)
	assert.Empty(t, loc)
	assert.Empty(t, idx.Candidates("nope"))
}

func TestBuild_Recursive(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/tools/bin/top":            0o755,
		"/tools/bin/nested/deep":    0o755,
		"/tools/bin/nested/more/up": 0o755,
	})

	idx := Build(context.Background(), fs, "/tools/bin")

	assert.Equal(t, []string{"deep", "top", "up"}, idx.Names())
	loc, _ := idx.Lookup("up")
	assert.Equal(t, "/tools/bin/nested/more/up", loc)

	_, ok := idx.Lookup("nested")
	assert.False(t, ok, "directories are not indexed")
}

func TestBuild_MaxDepth(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/d/top":     0o755,
		"/d/a/b/low": 0o755,
	})

	idx := Build(context.Background(), fs, "/d", WithMaxDepth(2))

	assert.Equal(t, []string{"top"}, idx.Names())
	require.Error(t, idx.Skipped())
	assert.ErrorIs(t, idx.Skipped(), ErrMaxDepth)
}

func TestBuild_SkipsMissingAndEmptyElements(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{"/bin/ls": 0o755})

	idx := Build(context.Background(), fs, searchPath("", "/does/not/exist", "", "/bin"))

	assert.Equal(t, []string{"ls"}, idx.Names())
	require.Len(t, idx.SkippedErrors(), 1)
	assert.ErrorIs(t, idx.SkippedErrors()[0], os.ErrNotExist)
}

func TestBuild_EmptySearchPath(t *testing.T) {
	idx := Build(context.Background(), afero.NewMemMapFs(), "")

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Names())
	assert.NoError(t, idx.Skipped())
}

func TestBuild_ExecutableOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute permission bits are not used on windows")
	}

	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/bin/tool":   0o755,
		"/bin/readme": 0o644,
	})

	all := Build(context.Background(), fs, "/bin")
	assert.Equal(t, []string{"readme", "tool"}, all.Names())

	exe := Build(context.Background(), fs, "/bin", WithExecutableOnly())
	assert.Equal(t, []string{"tool"}, exe.Names())
}

func TestBuild_Idempotent(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{
		"/a/x":     0o755,
		"/a/y":     0o755,
		"/b/x":     0o755,
		"/b/sub/z": 0o755,
	})
	path := searchPath("/a", "/b")

	first := Build(context.Background(), fs, path)
	second := Build(context.Background(), fs, path)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Entries(), second.Entries())
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	other := Build(context.Background(), fs, path, WithShadowing(FirstWins))
	assert.False(t, first.Equal(other))
	assert.NotEqual(t, first.Fingerprint(), other.Fingerprint())
}

func TestBuild_CancelledContext(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{"/bin/ls": 0o755})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := Build(ctx, fs, "/bin")
	assert.Equal(t, 0, idx.Len())
	assert.ErrorIs(t, idx.Skipped(), context.Canceled)
}

func TestBuild_IndexIsImmutable(t *testing.T) {
	fs := memFsWithFiles(t, map[string]os.FileMode{"/bin/ls": 0o755})
	idx := Build(context.Background(), fs, "/bin")

	entries := idx.Entries()
	entries["ls"] = "/tmp/evil"
	entries["rm"] = "/tmp/rm"

	candidates := idx.Candidates("ls")
	candidates[0] = "/tmp/evil"

	loc, _ := idx.Lookup("ls")
	assert.Equal(t, "/bin/ls", loc)
	assert.Equal(t, []string{"/bin/ls"}, idx.Candidates("ls"))
	assert.Equal(t, 1, idx.Len())
}

func TestBuild_FollowsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symbolic links need privileges on windows")
	}

	root := t.TempDir()
	real := filepath.Join(root, "real")
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(filepath.Join(real, "inner"), 0o755))
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "inner", "hidden"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "tool"), []byte("x"), 0o755))

	// directory link, file link, broken link and a loop back to bin
	require.NoError(t, os.Symlink(real, filepath.Join(bin, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(real, "tool"), filepath.Join(bin, "alias")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(bin, "broken")))
	require.NoError(t, os.Symlink(bin, filepath.Join(bin, "loop")))

	idx := Build(context.Background(), afero.NewOsFs(), bin)

	assert.Equal(t, []string{"alias", "hidden", "tool"}, idx.Names())

	loc, ok := idx.Lookup("hidden")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(bin, "linked", "inner", "hidden"), loc, "locations keep the linked path")

	loc, _ = idx.Lookup("alias")
	assert.Equal(t, filepath.Join(bin, "alias"), loc)

	require.Error(t, idx.Skipped())
	assert.ErrorIs(t, idx.Skipped(), ErrSymlinkLoop)
	assert.ErrorIs(t, idx.Skipped(), os.ErrNotExist)
}

func TestBuild_RelativeDirectoryIsMadeAbsolute(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin", "tool"), []byte("x"), 0o755))

	t.Chdir(root)

	idx := Build(context.Background(), afero.NewOsFs(), "bin")

	loc, ok := idx.Lookup("tool")
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(loc))
	assert.Equal(t, "tool", filepath.Base(loc))
}

func TestParseShadowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ShadowPolicy
		wantErr bool
	}{
		{in: "", want: LastWins},
		{in: "last", want: LastWins},
		{in: "FIRST", want: FirstWins},
		{in: "first-wins", want: FirstWins},
		{in: "middle", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseShadowPolicy(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownShadowPolicy)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) ShadowPolicy {
	t.Helper()

	p, err := ParseShadowPolicy(s)
	require.NoError(t, err)

	return p
}

func TestSplitSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	assert.Equal(t, []string{"/a", "/b"}, SplitSearchPath("/a"+sep+sep+"/b"+sep))
	assert.Empty(t, SplitSearchPath(""))
}
