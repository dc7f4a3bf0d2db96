// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func upper(_ context.Context, stdin []byte) FuncStageReturn {
	return FuncStageReturn{StdOut: bytes.ToUpper(stdin)}
}

func TestFuncStageRunChained_Success(t *testing.T) {
	f := NewFuncStage("upper", upper)

	out, err := f.RunChained(testContext(t, time.Second), &Output{StdOut: []byte("abc")})
	require.NoError(t, err)
	assert.Equal(t, "ABC", out.StdOutString())
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "upper", f.GetLabel())
}

func TestFuncStageRunChained_NilInput(t *testing.T) {
	f := NewFuncStage("upper", upper)

	out, err := f.RunChained(testContext(t, time.Second), nil)
	require.NoError(t, err)
	assert.Empty(t, out.StdOut)
}

func TestFuncStageRunChained_Failure(t *testing.T) {
	errTest := errors.New("test error")
	f := NewFuncStage("fail", func(_ context.Context, _ []byte) FuncStageReturn {
		return FuncStageReturn{StdOut: []byte("partial"), Err: errTest}
	})

	out, err := f.RunChained(testContext(t, time.Second), nil)
	require.ErrorIs(t, err, errTest)
	require.NotNil(t, out)
	assert.Equal(t, "partial", out.StdOutString())
	assert.Equal(t, -1, out.ExitCode)
}

func TestFuncStageRunChained_NilFunction(t *testing.T) {
	f := &FuncStage{Label: "nil"}

	out, err := f.RunChained(testContext(t, time.Second), &Output{StdOut: []byte("dropped")})
	require.NoError(t, err)
	assert.Empty(t, out.StdOut)
}

func TestFuncStageRunChained_UpstreamStdErr(t *testing.T) {
	called := false
	f := NewFuncStage("never", func(_ context.Context, _ []byte) FuncStageReturn {
		called = true
		return FuncStageReturn{}
	})

	out, err := f.RunChained(testContext(t, time.Second), &Output{StdErr: []byte("warning")})
	assert.Nil(t, out)

	var upstream *UpstreamError

	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "warning", upstream.StdErr)
	assert.False(t, called, "function must not run after upstream stderr")
}

func TestFuncStageRunChained_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	f := NewFuncStage("blocked", func(_ context.Context, _ []byte) FuncStageReturn {
		<-release
		return FuncStageReturn{}
	})

	ctx, cancel := context.WithTimeout(testContext(t, time.Second), 50*time.Millisecond)
	defer cancel()

	out, err := f.RunChained(ctx, nil)
	assert.Nil(t, out)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestFuncStageRunChained_Panic(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("string", func(t *testing.T) {
		f := NewFuncStage("panic", func(_ context.Context, _ []byte) FuncStageReturn {
			panic("oh no")
		})

		_, err := f.RunChained(testContext(t, time.Second), nil)

		var panicErr *ErrFuncStagePanic

		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "function stage panic: oh no", err.Error())
	})

	t.Run("error", func(t *testing.T) {
		errTest := errors.New("wrapped")
		f := NewFuncStage("panic", func(_ context.Context, _ []byte) FuncStageReturn {
			panic(errTest)
		})

		_, err := f.RunChained(testContext(t, time.Second), nil)
		require.ErrorIs(t, err, errTest)
		assert.Equal(t, "function stage panic: wrapped", err.Error())
	})
}
