// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package environ holds an immutable snapshot of environment variables.
//
// The snapshot is taken once and handed to every consumer, so nothing else in
// the module needs to read the process environment.
package environ

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// SearchPathKey is the variable holding the executable search path.
const SearchPathKey = "PATH"

// Snapshot is a read-only copy of environment variables.
// It is safe for concurrent use.
type Snapshot struct {
	vars map[string]string
}

// New captures KEY=VALUE pairs. A later pair overrides an earlier one with the
// same key. A pair without '=' is stored with an empty value.
func New(pairs []string) *Snapshot {
	vars := make(map[string]string, len(pairs))

	for _, kv := range pairs {
		k, v, _ := strings.Cut(kv, "=")
		if k == "" {
			continue
		}

		vars[k] = v
	}

	return &Snapshot{vars: vars}
}

// FromOS captures the current process environment.
func FromOS() *Snapshot {
	return New(os.Environ())
}

// Lookup returns the value of key and whether it was set.
func (s *Snapshot) Lookup(key string) (string, bool) {
	if s == nil {
		return "", false
	}

	v, ok := s.vars[key]

	return v, ok
}

// Get returns the value of key, or "" if it is not set.
func (s *Snapshot) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

// SearchPath returns the raw PATH value.
func (s *Snapshot) SearchPath() string {
	return s.Get(SearchPathKey)
}

// Len returns the number of captured variables.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.vars)
}

// Keys returns the captured keys in sorted order.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(s.vars))
}

// Map returns a copy of the captured variables.
func (s *Snapshot) Map() map[string]string {
	if s == nil {
		return map[string]string{}
	}

	return maps.Clone(s.vars)
}

// Environ returns the variables as sorted KEY=VALUE pairs, ready to pass to a child process.
func (s *Snapshot) Environ() []string {
	keys := s.Keys()
	env := make([]string, 0, len(keys))

	for _, k := range keys {
		env = append(env, k+"="+s.vars[k])
	}

	return env
}
