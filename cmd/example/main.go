// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main demonstrates building and running pipelines with the library.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matt-FFFFFF/plumb/internal/commandinpath"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/pathindex"
	"github.com/matt-FFFFFF/plumb/internal/progress"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
	"github.com/matt-FFFFFF/plumb/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	r := commandinpath.New(ctx, pathindex.WithShadowing(pathindex.FirstWins), pathindex.WithExecutableOnly())

	printf, err := r.Command("printf", `alpha\nbeta\ngamma\n`)
	if err != nil {
		exit(err)
	}

	grep, err := r.Command("grep", "a$")
	if err != nil {
		exit(err)
	}

	sh, err := r.Command("sh", "-c", "echo 'this stage complains' >&2")
	if err != nil {
		exit(err)
	}

	upper := runbatch.NewFuncStage("upper", func(_ context.Context, stdin []byte) runbatch.FuncStageReturn {
		return runbatch.FuncStageReturn{StdOut: bytes.ToUpper(stdin)}
	})

	fmt.Println("=== Successful pipeline ===")

	out, results, err := runbatch.NewPipeline("filter", printf, grep, upper).RunWithResults(ctx)
	if err != nil {
		exit(err)
	}

	fmt.Print(out.StdOutString())
	results.Print() // nolint:errcheck

	fmt.Println()
	fmt.Println("=== Pipeline stopped by standard error ===")

	reporter := progress.NewChannelReporter(ctx, 32) //nolint:mnd
	reporter.Listen(eventPrinter{})

	_, results, err = runbatch.NewPipeline("poisoned", printf, sh, grep).RunWithProgress(ctx, reporter)
	reporter.Close()

	fmt.Println("error:", err)
	results.Print() // nolint:errcheck
}

// eventPrinter prints progress events as they arrive.
type eventPrinter struct{}

func (eventPrinter) OnEvent(e progress.Event) {
	fmt.Printf("  [%s] %s: %s\n", e.Type, strings.Join(e.Path, " > "), e.Message)
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err) // nolint:errcheck
	os.Exit(1)
}
