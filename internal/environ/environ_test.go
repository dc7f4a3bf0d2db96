// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package environ

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	s := New([]string{
		"PATH=/usr/bin:/bin",
		"HOME=/home/plumb",
		"EMPTY=",
		"NOVALUE",
		"EQ=a=b",
		"HOME=/root",
		"=ignored",
	})

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, "/usr/bin:/bin", s.SearchPath())
	assert.Equal(t, "/root", s.Get("HOME"), "later pair should override")
	assert.Equal(t, "a=b", s.Get("EQ"), "only the first '=' separates key and value")

	v, ok := s.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v)

	v, ok = s.Lookup("NOVALUE")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = s.Lookup("MISSING")
	assert.False(t, ok)
	assert.Empty(t, s.Get("MISSING"))
}

func TestKeysAndEnviron(t *testing.T) {
	s := New([]string{"B=2", "A=1", "C=3"})

	assert.Equal(t, []string{"A", "B", "C"}, s.Keys())
	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, s.Environ())
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := New([]string{"A=1"})

	m := s.Map()
	m["A"] = "changed"
	m["B"] = "added"

	env := s.Environ()
	env[0] = "A=mutated"

	assert.Equal(t, "1", s.Get("A"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"A=1"}, s.Environ())
}

func TestFromOS(t *testing.T) {
	t.Setenv("PLUMB_SNAPSHOT_TEST", "captured")

	s := FromOS()
	t.Setenv("PLUMB_SNAPSHOT_TEST", "later")

	assert.Equal(t, "captured", s.Get("PLUMB_SNAPSHOT_TEST"), "snapshot should not follow later changes")
}

func TestNilSnapshot(t *testing.T) {
	var s *Snapshot

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.SearchPath())
	assert.Empty(t, s.Keys())
	assert.Empty(t, s.Environ())
	assert.Empty(t, s.Map())
}
