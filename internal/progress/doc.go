// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries stage lifecycle events from a running pipeline to a listener,
// such as the terminal UI.
package progress
