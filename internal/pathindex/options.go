// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathindex

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownShadowPolicy is returned when a shadow policy name cannot be parsed.
var ErrUnknownShadowPolicy = errors.New("unknown shadow policy")

const defaultMaxDepth = 64

// ShadowPolicy decides which entry is kept when a name is seen more than once.
type ShadowPolicy int

const (
	// LastWins keeps the entry found last in scan order.
	LastWins ShadowPolicy = iota
	// FirstWins keeps the entry found first in scan order.
	FirstWins
)

// String implements fmt.Stringer.
func (p ShadowPolicy) String() string {
	switch p {
	case FirstWins:
		return "first"
	case LastWins:
		return "last"
	default:
		return fmt.Sprintf("ShadowPolicy(%d)", int(p))
	}
}

// ParseShadowPolicy parses "first" or "last". The empty string means LastWins.
func ParseShadowPolicy(s string) (ShadowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", "last-wins":
		return LastWins, nil
	case "first", "first-wins":
		return FirstWins, nil
	default:
		return LastWins, fmt.Errorf("%w: %q", ErrUnknownShadowPolicy, s)
	}
}

type options struct {
	policy         ShadowPolicy
	executableOnly bool
	maxDepth       int
}

func defaultOptions() options {
	return options{
		policy:   LastWins,
		maxDepth: defaultMaxDepth,
	}
}

// Option configures Build.
type Option func(*options)

// WithShadowing sets the shadow policy.
func WithShadowing(p ShadowPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithExecutableOnly indexes only regular files with an execute bit set.
// The permission check is skipped on Windows.
func WithExecutableOnly() Option {
	return func(o *options) {
		o.executableOnly = true
	}
}

// WithMaxDepth limits how deep below a search path directory the walk descends.
// Values below one are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}
