// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func newRecord(level slog.Level, msg string, attrs ...slog.Attr) slog.Record {
	r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC), level, msg, 0)
	r.AddAttrs(attrs...)

	return r
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(&buf))
	err := h.Handle(context.Background(), newRecord(slog.LevelInfo, "stage started", slog.String("label", "grep")))
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[03:04:05.006] INFO: stage started {"), out)
	assert.Contains(t, out, `"label": "grep"`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestPrettyHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(nil, WithDestinationWriter(&buf))
	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelWarn, "plain")))
	assert.Equal(t, "[03:04:05.006] WARN: plain\n", buf.String())

	buf.Reset()

	h = NewPrettyHandler(nil, WithDestinationWriter(&buf), WithOutputEmptyAttrs())
	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelWarn, "plain")))
	assert.Equal(t, "[03:04:05.006] WARN: plain {}\n", buf.String())
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(nil, WithDestinationWriter(&buf))
	logger := slog.New(h).With("pipeline", "sources").WithGroup("stage")
	logger.Warn("failed", "index", 1)

	out := buf.String()
	assert.Contains(t, out, `"pipeline": "sources"`)
	assert.Contains(t, out, `"stage": {`)
	assert.Contains(t, out, `"index": 1`)
}

func TestPrettyHandler_ReplaceAttrDropsTime(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelError, "boom")))
	assert.Equal(t, "ERROR: boom\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelInfo})
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestPrettyHandler_WriteError(t *testing.T) {
	h := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))
	err := h.Handle(context.Background(), newRecord(slog.LevelInfo, "lost"))
	require.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyHandler_Colour(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(nil, WithDestinationWriter(&buf), WithColour())
	require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelError, "boom")))
	assert.Contains(t, buf.String(), "\033[31mERROR:\033[0m")
}
