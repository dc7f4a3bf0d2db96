// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{
			name: "context with logger",
			ctx:  New(context.Background(), custom),
			want: custom,
		},
		{
			name: "new with nil logger uses default",
			ctx:  New(context.Background(), nil),
			want: DefaultLogger,
		},
		{
			name: "context without logger",
			ctx:  context.Background(),
			want: DefaultLogger,
		},
		{
			name: "context with wrong type value",
			ctx:  context.WithValue(context.Background(), loggerKey{}, "not a logger"),
			want: DefaultLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, Logger(tt.ctx))
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	ctx := New(context.Background(), logger)

	tests := []struct {
		name    string
		logFunc func(context.Context, string, ...any)
		level   string
	}{
		{name: "debug", logFunc: Debug, level: "DEBUG"},
		{name: "info", logFunc: Info, level: "INFO"},
		{name: "warn", logFunc: Warn, level: "WARN"},
		{name: "error", logFunc: Error, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, "stage finished", "stage", 2)

			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, "stage finished")
			assert.Contains(t, out, "stage=2")
		})
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "ERROR", want: slog.LevelError},
		{in: "", want: slog.LevelWarn},
		{in: "verbose", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, levelFromString(tt.in))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer

	prev := LevelVar.Level()
	defer LevelVar.Set(prev)

	LevelVar.Set(slog.LevelInfo)

	logger := NewJSON(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "name", "grep")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"name":"grep"`)
}
