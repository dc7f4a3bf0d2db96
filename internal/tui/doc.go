// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui shows a live view of a running pipeline: one line per stage with its status,
// elapsed time and the last line of output, driven by progress events.
package tui
