// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI SGR sequences for terminal output.
//
// Colour is decided once, at package init. NO_COLOR always disables it,
// FORCE_COLOR enables it, otherwise it is enabled only when stdout is a terminal
// (golang.org/x/term).
package color
