// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hcl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/plumb/internal/environ"
	"github.com/peterh/liner"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrEvalExpression is returned when an expression cannot be parsed or evaluated.
var ErrEvalExpression = errors.New("failed to evaluate expression")

// EvalExpression evaluates an expression with the same variables and functions as pipeline files.
func EvalExpression(src string, snap *environ.Snapshot) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "eval.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, errors.Join(ErrEvalExpression, diags)
	}

	value, diags := expr.Value(EvalContext(snap))
	if diags.HasErrors() {
		return cty.NilVal, errors.Join(ErrEvalExpression, diags)
	}

	return value, nil
}

// FormatValue renders a value as JSON.
func FormatValue(v cty.Value) (string, error) {
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "", errors.Join(ErrEvalExpression, err)
	}

	return string(b), nil
}

// Evaluate evaluates src and returns the formatted value, or the error text.
func Evaluate(src string, snap *environ.Snapshot) (string, error) {
	v, err := EvalExpression(src, snap)
	if err != nil {
		return "", err
	}

	return FormatValue(v)
}

// EnterDebugMode starts an interactive prompt evaluating expressions against snap.
func EnterDebugMode(snap *environ.Snapshot, w io.Writer) error {
	line := liner.NewLiner()

	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)
	fmt.Fprintln(w, "Entering debugging mode, type `quit` or `exit` or press Ctrl+C to quit.") // nolint:errcheck

	for {
		input, err := line.Prompt("plumb> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("error reading line: %w", err)
		}

		input = strings.TrimSpace(input)

		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		line.AppendHistory(input)

		out, err := Evaluate(input, snap)
		if err != nil {
			out = err.Error()
		}

		fmt.Fprintln(w, out) // nolint:errcheck
	}
}
