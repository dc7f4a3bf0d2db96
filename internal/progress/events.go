// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a lifecycle update for a pipeline or one of its stages.
type Event struct {
	Path      []string  // Pipeline label followed by the stage name, e.g. ["filter", "[1] grep"]
	Type      EventType // What happened
	Message   string    // Human readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type specific data
}

// EventType is the kind of a progress event.
type EventType int

const (
	// EventStarted indicates a pipeline or stage has started.
	EventStarted EventType = iota
	// EventOutput carries the last line a stage wrote to standard output.
	EventOutput
	// EventCompleted indicates success.
	EventCompleted
	// EventFailed indicates failure.
	EventFailed
	// EventSkipped indicates a stage was not run because an earlier stage failed.
	EventSkipped
)

// String implements fmt.Stringer.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// EventData holds the type specific fields of an event.
type EventData struct {
	OutputLine string // EventOutput
	ExitCode   int    // EventCompleted, EventFailed
	Error      error  // EventFailed
}

// Reporter receives events from a running pipeline.
type Reporter interface {
	// Report sends an event. Implementations must not block for long.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener consumes events delivered by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report does nothing.
func (NullReporter) Report(Event) {}

// Close does nothing.
func (NullReporter) Close() {}

// NewNullReporter returns a Reporter that discards events.
func NewNullReporter() Reporter {
	return NullReporter{}
}
