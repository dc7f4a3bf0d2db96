// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package hcl decodes pipeline files written in HCL.
//
// A file holds one or more pipeline blocks:
//
//	pipeline "sources" {
//	  description = "list go sources"
//
//	  stage {
//	    exec = "ls"
//	    args = ["-1", env.HOME]
//	  }
//
//	  stage {
//	    exec = "grep"
//	    args = ["\\.go$"]
//	    success_exit_codes = [0, 1]
//	  }
//	}
//
// Expressions can read the environment snapshot through the env object and use
// a small set of string functions such as upper, join and format.
package hcl
