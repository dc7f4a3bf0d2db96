// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
)

func TestIsColorCapable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, isColorCapable(), "NO_COLOR should disable colour")

	t.Setenv("FORCE_COLOR", "1")
	assert.False(t, isColorCapable(), "NO_COLOR should win over FORCE_COLOR")

	t.Setenv("NO_COLOR", "")
	assert.True(t, isColorCapable(), "FORCE_COLOR should enable colour")
}

func TestControlString(t *testing.T) {
	assert.Equal(t, "\033[1;31m", ControlString(Bold, FgRed))
	assert.Equal(t, "\033[0m", ControlString(Reset))
}

func TestColorize(t *testing.T) {
	stubs := gostub.Stub(&enabled, true)
	defer stubs.Reset()

	assert.Equal(t, "\033[32mok\033[0m", Colorize("ok", FgGreen))
	assert.Equal(t, "\033[1;33mwarn", ColorizeNoReset("warn", Bold, FgYellow))
	assert.Equal(t, "plain", Colorize("plain"))

	stubs.Stub(&enabled, false)
	assert.Equal(t, "ok", Colorize("ok", FgGreen))
	assert.Equal(t, "warn", ColorizeNoReset("warn", FgYellow))
}
