// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter implements Reporter with a buffered channel.
// Events are dropped rather than blocking the pipeline when the buffer is full.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewChannelReporter creates a ChannelReporter holding up to bufferSize pending events.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	ctx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Report sends the event without blocking.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	case <-cr.ctx.Done():
	default:
	}
}

// Close stops delivery and waits for a listener started with Listen to drain.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()

	if cr.closed {
		cr.mu.Unlock()
		return
	}

	cr.closed = true
	close(cr.ch)
	cr.mu.Unlock()

	cr.wg.Wait()
	cr.cancel()
}

// Listen forwards events to listener on a new goroutine until the reporter is closed.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for event := range cr.ch {
			listener.OnEvent(event)
		}
	}()
}

// Events returns the event channel, closed by Close.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}
