// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// Library code never holds a logger of its own: it asks the context with
// Logger(ctx). The default is a pretty console handler on stderr whose level is
// read from PLUMB_LOG_LEVEL.
package ctxlog
