// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyStarted is returned when Start is called on a Task that
	// already owns a process.
	ErrAlreadyStarted = errors.New("task already started")
	// ErrCouldNotStartProcess is returned when the process could not be spawned.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrNonZeroExit is returned when the process exits with a non-zero code.
	ErrNonZeroExit = errors.New("process exited with non-zero code")
	// ErrTerminated is returned when the process was forcibly killed.
	ErrTerminated = errors.New("process terminated")
	// ErrTaskFailed is the group-level failure sentinel.
	ErrTaskFailed = errors.New("task failed")
	// ErrGroupAborted is returned when a group is aborted by timeout or cancellation.
	ErrGroupAborted = errors.New("task group aborted")
	// ErrGroupSkipped marks groups that never started because an earlier group failed.
	ErrGroupSkipped = errors.New("task group skipped after earlier failure")
)

// Status is the outcome of a task, group or run.
type Status int

const (
	// StatusUnknown means the element has not produced a result yet.
	StatusUnknown Status = iota
	// StatusSuccess means the element finished and succeeded.
	StatusSuccess
	// StatusFailed means the element finished and failed, or was terminated.
	StatusFailed
	// StatusSkipped means the element was never started.
	StatusSkipped
)

// String implements the Stringer interface for Status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single task. Finished and succeeded are
// distinct: a task that exited non-zero is finished but not succeeded.
type Result struct {
	Label    string        // Task title
	Status   Status        // Success, failed or skipped
	ExitCode int           // Process exit code; -1 when the process never ran
	Err      error         // Failure cause, nil on success
	Stderr   []byte        // Captured standard error, bounded
	Duration time.Duration // Wall time from start to exit
}

// Results is an ordered collection of task results.
type Results []*Result

// HasError reports whether any result in the collection failed.
func (r Results) HasError() bool {
	for _, v := range r {
		if v.Status == StatusFailed {
			return true
		}
	}

	return false
}

// GroupResult is the outcome of one TaskGroup execution.
type GroupResult struct {
	Label  string  // Group title
	Status Status  // Success, failed or skipped
	Err    error   // First failure cause, nil on success
	Tasks  Results // Per-stage results in declaration order
}

// RunResult is the outcome of a full Runner execution.
type RunResult struct {
	Title       string         // Runner title
	RunID       string         // Unique ID for this execution
	Status      Status         // Success or failed
	FailedGroup int            // Index of the failing group, -1 on success
	Err         error          // First failure cause, nil on success
	Groups      []*GroupResult // One entry per group, including skipped ones
}

// Succeeded reports whether the whole run completed successfully.
func (r *RunResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
