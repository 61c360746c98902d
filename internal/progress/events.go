// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a real-time update emitted while a run executes. The Path
// identifies the emitting element in the run hierarchy, e.g.
// ["annual daylight", "matrices", "total sky", "generate dc matrix"].
type Event struct {
	Path      []string  // Hierarchical path: run > group > pipeline > task
	Type      EventType // What happened
	Message   string    // Human-readable status line
	Percent   float64   // Completion percent from the output size hint, -1 if unknown
	ExitCode  int       // Exit code, meaningful for EventTaskFinished/EventTaskFailed
	Err       error     // Set for EventTaskFailed and EventGroupFailed
	Timestamp time.Time // When the event occurred
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventRunStarted indicates a runner has begun executing its groups.
	EventRunStarted EventType = iota
	// EventGroupStarted indicates a task group has begun execution.
	EventGroupStarted
	// EventTaskStarted indicates a task process has been spawned.
	EventTaskStarted
	// EventTaskProgress carries a periodic liveness/percent update for a running task.
	EventTaskProgress
	// EventTaskFinished indicates a task exited successfully.
	EventTaskFinished
	// EventTaskFailed indicates a task exited with a failure or could not be spawned.
	EventTaskFailed
	// EventGroupFinished indicates every task in a group finished successfully.
	EventGroupFinished
	// EventGroupFailed indicates the group was aborted after a task failure.
	EventGroupFailed
	// EventRunFinished indicates the runner completed, successfully or not.
	EventRunFinished
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventRunStarted:
		return "run started"
	case EventGroupStarted:
		return "group started"
	case EventTaskStarted:
		return "task started"
	case EventTaskProgress:
		return "task progress"
	case EventTaskFinished:
		return "task finished"
	case EventTaskFailed:
		return "task failed"
	case EventGroupFinished:
		return "group finished"
	case EventGroupFailed:
		return "group failed"
	case EventRunFinished:
		return "run finished"
	default:
		return "unknown"
	}
}

// Reporter is the interface for sending progress events. Implementations
// must be non-blocking: the polling loop in the run manager reports from its
// control goroutine and must never stall on a slow consumer.
type Reporter interface {
	// Report sends a progress event.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener receives progress events from a reporter.
type Listener interface {
	// OnEvent is called for each event. Implementations should return
	// quickly to avoid backing up the event channel.
	OnEvent(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter by doing nothing.
func (nr *NullReporter) Report(_ Event) {}

// Close implements Reporter by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
