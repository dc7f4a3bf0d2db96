// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs executables and chains them into pipelines.
//
// An Invocable is one resolved executable plus its arguments. A Pipeline runs
// a list of stages in order, feeding the captured standard output of each stage
// to the standard input of the next. Stages never overlap: each one runs to
// completion before the next starts.
//
// A stage that writes anything to standard error poisons the pipeline. The next
// stage refuses to start and the failure is reported against the stage that
// wrote the error text. Exit codes are recorded but do not stop a pipeline
// unless success exit codes are configured on the stage.
package runbatch
