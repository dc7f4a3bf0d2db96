// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
)

// Watch reads sigCh until it is closed or ctx is done.
// The second signal of the same type cancels the context.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "second signal of this type, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "first signal of this type, relayed to child processes", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
