// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/signalbroker"
)

var _ Runnable = (*Invocable)(nil)

// Invocable is a resolved executable plus the arguments to run it with.
//
// Configure it with Arg and Args, then run it. Running does not modify the
// Invocable: every run binds fresh process state, so it may be run again.
type Invocable struct {
	name             string
	label            string // Overrides name in results and errors.
	path             string
	args             []string
	env              []string       // Child environment, nil inherits the calling process environment.
	successExitCodes []int          // Nil disables exit code checks.
	sigCh            chan os.Signal // Signals to relay to the child, allows mocking in test.
}

// NewInvocable returns an Invocable for the executable at path with no arguments.
func NewInvocable(name, path string) *Invocable {
	return &Invocable{
		name: name,
		path: path,
		args: []string{},
	}
}

// Arg appends one argument.
func (c *Invocable) Arg(arg string) *Invocable {
	c.args = append(c.args, arg)
	return c
}

// Args appends the arguments in order.
func (c *Invocable) Args(args ...string) *Invocable {
	c.args = append(c.args, args...)
	return c
}

// WithEnv sets the environment of the child process as KEY=VALUE pairs.
func (c *Invocable) WithEnv(env []string) *Invocable {
	c.env = slices.Clone(env)
	return c
}

// WithSuccessExitCodes makes any other exit code fail the run with ErrUnsuccessfulExitCode.
// Without codes, exit codes are recorded but never treated as a failure.
func (c *Invocable) WithSuccessExitCodes(codes ...int) *Invocable {
	c.successExitCodes = slices.Clone(codes)
	return c
}

// WithLabel sets the label used in results and errors. The executable name is used by default.
func (c *Invocable) WithLabel(label string) *Invocable {
	c.label = label
	return c
}

// Name returns the executable name.
func (c *Invocable) Name() string {
	return c.name
}

// Path returns the executable location.
func (c *Invocable) Path() string {
	return c.path
}

// Arguments returns a copy of the configured arguments.
func (c *Invocable) Arguments() []string {
	return slices.Clone(c.args)
}

// GetLabel implements Runnable.
func (c *Invocable) GetLabel() string {
	if c.label != "" {
		return c.label
	}

	return c.name
}

// String returns the command line, arguments unquoted.
func (c *Invocable) String() string {
	return strings.Join(slices.Concat([]string{c.name}, c.args), " ")
}

func (c *Invocable) stage() {}

// Run runs the executable with no input. It is RunChained(ctx, nil).
func (c *Invocable) Run(ctx context.Context) (*Output, error) {
	return c.RunChained(ctx, nil)
}

// RunChained implements Runnable.
//
// The process is started with all three standard streams piped. The input's
// standard output is written to the child and the child's standard input is
// closed, then standard output and standard error are read to completion, in
// that order, before waiting for the process to exit.
//
// If the process started, the captured output is returned even when err is not nil.
func (c *Invocable) RunChained(ctx context.Context, input *Output) (*Output, error) {
	logger := ctxlog.Logger(ctx).With("runnableType", "Invocable", "label", c.GetLabel())

	if err := checkUpstream(input); err != nil {
		logger.Debug("previous stage wrote to stderr, not starting process")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("command info", "path", c.path, "args", c.args)

	p, err := newStdioPipes()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}
	defer p.close()

	ps, err := os.StartProcess(c.path, slices.Concat([]string{c.name}, c.args), &os.ProcAttr{
		Env:   c.env,
		Files: p.childFiles(),
	})

	// The child holds its own copies now.
	p.closeChildEnds()

	if err != nil {
		logger.Debug("could not start process", "error", err)
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Info("process started", "pid", ps.Pid)

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	done := make(chan struct{})
	watchDone := make(chan struct{})
	reasons := make(chan error, 2)

	go func() {
		defer close(watchDone)
		watchProcess(ctx, ps, sigCh, done, reasons)
	}()

	var runErr error

	if err := p.writeInput(input); err != nil {
		runErr = errors.Join(runErr, ErrFailedToWriteInput, err)
	}

	logger.Debug("read stdout")

	stdout, err := readAllUpToMax(ctx, p.stdoutR, maxBufferSize)
	if err != nil {
		runErr = errors.Join(runErr, err)
	}

	logger.Debug("read stderr")

	stderr, err := readAllUpToMax(ctx, p.stderrR, maxBufferSize)
	if err != nil {
		runErr = errors.Join(runErr, err)
	}

	state, err := ps.Wait()
	close(done)

	if err != nil {
		runErr = errors.Join(runErr, err)
	}

	<-watchDone
	close(reasons)

	runErr = errors.Join(runErr, watchReasons(state, reasons))

	out := &Output{
		StdOut:   stdout,
		StdErr:   stderr,
		ExitCode: -1,
	}

	if state != nil {
		out.ExitCode = state.ExitCode()
	}

	logger.Debug("process finished", "exitCode", out.ExitCode, "stdoutBytes", len(stdout), "stderrBytes", len(stderr))

	if runErr == nil && c.successExitCodes != nil && !slices.Contains(c.successExitCodes, out.ExitCode) {
		runErr = fmt.Errorf("%w: %d", ErrUnsuccessfulExitCode, out.ExitCode)
	}

	if runErr != nil {
		logger.Debug("process error", "error", runErr)
		return out, runErr
	}

	return out, nil
}

// watchProcess relays signals to the child and kills it when ctx is done.
// The reason for any interference is sent on reasons, which must be buffered.
// watchReasons joins the errors reported by the watchdog.
// A timeout that raced a normal exit is dropped, the process finished on its own.
func watchReasons(state *os.ProcessState, reasons <-chan error) error {
	var err error

	for reason := range reasons {
		if state != nil && state.Exited() && errors.Is(reason, ErrTimeoutExceeded) {
			continue
		}

		err = errors.Join(err, reason)
	}

	return err
}

func watchProcess(ctx context.Context, ps *os.Process, sigCh <-chan os.Signal, done <-chan struct{}, reasons chan<- error) {
	logger := ctxlog.Logger(ctx)

	for {
		select {
		case <-done:
			return

		case s := <-sigCh:
			logger.Info("relaying signal", "signal", s.String(), "pid", ps.Pid)
			report(reasons, ErrSignalReceived)

			if err := ps.Signal(s); err != nil {
				logger.Info("failed to send signal", "signal", s.String(), "error", err)
			}

		case <-ctx.Done():
			logger.Info("context done, killing process", "pid", ps.Pid)
			report(reasons, ErrTimeoutExceeded)
			killPs(ctx, ps)

			return
		}
	}
}

func report(reasons chan<- error, err error) {
	select {
	case reasons <- err:
	default:
	}
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

// readAllUpToMax reads r to EOF, keeping at most maxBufferSize bytes.
// The remainder is discarded so the writer is never left blocked.
func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && !errors.Is(err, io.EOF) {
		return buf.Bytes(), errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		discarded, _ := io.Copy(io.Discard, r)
		ctxlog.Debug(ctx, "buffer overflow in readAllUpToMax",
			"bytesRead", n+discarded,
			"maxBytes", maxBufferSize,
		)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}

// stdioPipes holds both ends of the three pipes for one child process.
// Closed ends are set to nil so close is safe to call on every path.
type stdioPipes struct {
	stdinR, stdinW   *os.File
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File
}

func newStdioPipes() (*stdioPipes, error) {
	p := &stdioPipes{}

	var err error

	if p.stdinR, p.stdinW, err = os.Pipe(); err != nil {
		return nil, err
	}

	if p.stdoutR, p.stdoutW, err = os.Pipe(); err != nil {
		p.close()
		return nil, err
	}

	if p.stderrR, p.stderrW, err = os.Pipe(); err != nil {
		p.close()
		return nil, err
	}

	return p, nil
}

func (p *stdioPipes) childFiles() []*os.File {
	return []*os.File{p.stdinR, p.stdoutW, p.stderrW}
}

func (p *stdioPipes) closeChildEnds() {
	_ = closeFile(&p.stdinR)
	_ = closeFile(&p.stdoutW)
	_ = closeFile(&p.stderrW)
}

// writeInput writes the previous stage's standard output, then closes the child's standard input.
func (p *stdioPipes) writeInput(input *Output) error {
	var err error

	if input != nil && len(input.StdOut) > 0 {
		_, err = p.stdinW.Write(input.StdOut)
	}

	return errors.Join(err, closeFile(&p.stdinW))
}

func (p *stdioPipes) close() {
	for _, f := range []**os.File{&p.stdinR, &p.stdinW, &p.stdoutR, &p.stdoutW, &p.stderrR, &p.stderrW} {
		_ = closeFile(f)
	}
}

func closeFile(f **os.File) error {
	if *f == nil {
		return nil
	}

	err := (*f).Close()
	*f = nil

	return err
}
