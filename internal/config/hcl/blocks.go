// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hcl

// File is the decoded body of one pipeline file.
type File struct {
	Pipelines []*PipelineBlock `hcl:"pipeline,block"`
}

// PipelineBlock is a `pipeline "name" { ... }` block.
type PipelineBlock struct {
	Name        string        `hcl:"name,label"`
	Description string        `hcl:"description,optional"`
	Shadowing   string        `hcl:"shadowing,optional"`
	Stages      []*StageBlock `hcl:"stage,block"`
}

// StageBlock is a `stage { ... }` block inside a pipeline.
type StageBlock struct {
	Name             string   `hcl:"name,optional"`
	Exec             string   `hcl:"exec"`
	Args             []string `hcl:"args,optional"`
	SuccessExitCodes []int    `hcl:"success_exit_codes,optional"`
}
