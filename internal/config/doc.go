// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config builds pipelines from declarative pipeline files.
//
// YAML files (.yaml, .yml) describe a single pipeline:
//
//	name: sources
//	description: list go sources
//	shadowing: first
//	stages:
//	  - exec: ls
//	    args: ["-1"]
//	  - name: only go
//	    exec: grep
//	    args: ["\\.go$"]
//	    success_exit_codes: [0, 1]
//
// HCL files (.plumb.hcl) and directories of them are decoded by the hcl
// subpackage. Both formats produce a Definition, which is resolved against the
// search path index to build a runbatch.Pipeline.
package config
