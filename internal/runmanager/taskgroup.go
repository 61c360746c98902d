// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daylight-tools/radrun/internal/ctxlog"
	"github.com/daylight-tools/radrun/internal/progress"
)

// terminateGrace bounds how long a failing group waits for killed processes
// to record their exit state before returning.
const terminateGrace = 2 * time.Second

// TaskGroup is a fixed set of pipelines that run concurrently under a shared
// concurrency ceiling. The group is finished when every member pipeline is
// finished; the first observed task failure fails the whole group and
// terminates its remaining running tasks.
type TaskGroup struct {
	Title     string
	Pipelines []*Pipeline

	// Timeout bounds this group's execution. Zero means the group uses the
	// Options timeout, if any.
	Timeout time.Duration
}

// NewTaskGroup creates a group from the given pipelines.
func NewTaskGroup(title string, pipelines ...*Pipeline) *TaskGroup {
	return &TaskGroup{Title: title, Pipelines: pipelines}
}

// GroupOfTasks creates a group where each task is an independent one-stage
// pipeline, the simple batch shape.
func GroupOfTasks(title string, tasks ...*Task) *TaskGroup {
	pipelines := make([]*Pipeline, 0, len(tasks))
	for _, t := range tasks {
		pipelines = append(pipelines, Single(t))
	}

	return &TaskGroup{Title: title, Pipelines: pipelines}
}

// Finished reports whether every member pipeline is finished.
func (g *TaskGroup) Finished() bool {
	for _, p := range g.Pipelines {
		if !p.Finished() {
			return false
		}
	}

	return true
}

// RunningCount returns the number of tasks currently in the running state.
func (g *TaskGroup) RunningCount() int {
	n := 0

	for _, p := range g.Pipelines {
		for _, t := range p.Stages {
			if t.Running() {
				n++
			}
		}
	}

	return n
}

// Terminate force-kills every running task in the group. Idempotent.
func (g *TaskGroup) Terminate() {
	for _, p := range g.Pipelines {
		p.Terminate()
	}
}

// Execute runs the group to completion and returns its result. Pipelines are
// started in declaration order up to the concurrency ceiling; when a stage
// finishes successfully its pipeline's next stage takes over the slot, and
// when a pipeline is exhausted the slot goes to the next not-yet-started
// pipeline. The control loop polls at the configured interval and never
// blocks on a single task, so a failure anywhere is detected promptly:
// the group then terminates all running tasks and reports failure.
//
// Cancellation or timeout of ctx likewise terminates the group.
func (g *TaskGroup) Execute(ctx context.Context, opts Options) *GroupResult {
	opts = opts.normalized(len(g.Pipelines))
	path := opts.withPath(g.Title).path

	logger := ctxlog.Logger(ctx).With("group", g.Title)

	if len(g.Pipelines) == 0 {
		return &GroupResult{Label: g.Title, Status: StatusSuccess}
	}

	timeout := opts.Timeout
	if g.Timeout > 0 {
		timeout = g.Timeout
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts.Reporter.Report(progress.Event{
		Path:      path,
		Type:      progress.EventGroupStarted,
		Message:   fmt.Sprintf("Starting group %s", g.Title),
		Timestamp: time.Now(),
	})

	active := make([]*Pipeline, 0, opts.MaxConcurrency)
	nextIdx := 0

	startNext := func(p *Pipeline) *Task {
		t := p.StartNext(opts.Dir, opts.Env)
		if t == nil {
			return nil
		}

		logger.Debug("task started", "task", t.Title)
		opts.Reporter.Report(progress.Event{
			Path:      childPath(path, p.Title, t.Title),
			Type:      progress.EventTaskStarted,
			Message:   fmt.Sprintf("Starting task %s", t.Title),
			Timestamp: time.Now(),
		})

		return t
	}

	for {
		// Fill free slots with not-yet-started pipelines, in declaration order.
		for len(active) < opts.MaxConcurrency && nextIdx < len(g.Pipelines) {
			p := g.Pipelines[nextIdx]
			nextIdx++

			if startNext(p) == nil {
				continue // empty pipeline
			}

			active = append(active, p)
		}

		// Poll every active pipeline's current stage.
		still := active[:0]

		var failure *Result

		for _, p := range active {
			t := p.Current()

			switch {
			case t.Finished() && !t.Succeeded():
				failure = t.Result()

				logger.Debug("task failed", "task", t.Title, "exitCode", failure.ExitCode, "error", failure.Err)
				opts.Reporter.Report(progress.Event{
					Path:      childPath(path, p.Title, t.Title),
					Type:      progress.EventTaskFailed,
					Message:   t.ProgressReport(),
					ExitCode:  failure.ExitCode,
					Err:       failure.Err,
					Timestamp: time.Now(),
				})

			case t.Finished():
				opts.Reporter.Report(progress.Event{
					Path:      childPath(path, p.Title, t.Title),
					Type:      progress.EventTaskFinished,
					Message:   t.ProgressReport(),
					Timestamp: time.Now(),
				})

				if startNext(p) != nil {
					still = append(still, p) // next stage keeps the slot
				}

			default:
				opts.Reporter.Report(progress.Event{
					Path:      childPath(path, p.Title, t.Title),
					Type:      progress.EventTaskProgress,
					Message:   t.ProgressReport(),
					Percent:   t.ProgressPct(),
					Timestamp: time.Now(),
				})

				still = append(still, p)
			}

			if failure != nil {
				break
			}
		}

		if failure != nil {
			return g.fail(logger, opts, path, errors.Join(ErrTaskFailed, failure.Err))
		}

		active = still

		if len(active) == 0 && nextIdx >= len(g.Pipelines) {
			opts.Reporter.Report(progress.Event{
				Path:      path,
				Type:      progress.EventGroupFinished,
				Message:   fmt.Sprintf("Finished group %s", g.Title),
				Timestamp: time.Now(),
			})

			return &GroupResult{
				Label:  g.Title,
				Status: StatusSuccess,
				Tasks:  g.results(),
			}
		}

		select {
		case <-ctx.Done():
			return g.fail(logger, opts, path, errors.Join(ErrGroupAborted, ctx.Err()))
		case <-time.After(opts.PollInterval):
		}
	}
}

// fail terminates everything still running and builds the failure result.
func (g *TaskGroup) fail(logger *slog.Logger, opts Options, path []string, err error) *GroupResult {
	logger.Debug("terminating running tasks")

	g.Terminate()
	g.awaitIdle(terminateGrace)

	opts.Reporter.Report(progress.Event{
		Path:      path,
		Type:      progress.EventGroupFailed,
		Message:   fmt.Sprintf("Group %s failed", g.Title),
		Err:       err,
		Timestamp: time.Now(),
	})

	return &GroupResult{
		Label:  g.Title,
		Status: StatusFailed,
		Err:    err,
		Tasks:  g.results(),
	}
}

// results flattens per-pipeline stage results in declaration order.
func (g *TaskGroup) results() Results {
	out := make(Results, 0)

	for _, p := range g.Pipelines {
		out = append(out, p.Results()...)
	}

	return out
}

// awaitIdle waits, up to the grace period, for killed tasks to record their
// exit state so the group result reflects it.
func (g *TaskGroup) awaitIdle(grace time.Duration) {
	deadline := time.After(grace)

	for _, p := range g.Pipelines {
		for _, t := range p.Stages {
			ch := t.Done()
			if ch == nil {
				continue
			}

			select {
			case <-ch:
			case <-deadline:
				return
			}
		}
	}
}

// childPath returns a new event path with labels appended, leaving the
// parent path untouched for subsequent events.
func childPath(path []string, labels ...string) []string {
	out := make([]string, 0, len(path)+len(labels))
	out = append(out, path...)
	out = append(out, labels...)

	return out
}
