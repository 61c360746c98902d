// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"context"
	"fmt"
	"time"

	"github.com/daylight-tools/radrun/internal/ctxlog"
	"github.com/daylight-tools/radrun/internal/progress"
	"github.com/google/uuid"
)

// Runner executes an ordered list of TaskGroups, one fully-completed group
// at a time. Group k+1 never starts a single task while group k has any task
// outstanding, and a failed group aborts the rest of the run. There is no
// retry: a failed run must be re-invoked by the caller after fixing inputs.
//
// The whole plan is known at construction; there is no dynamic submission.
type Runner struct {
	Title  string
	Groups []*TaskGroup

	runID string
}

// NewRunner creates a runner with a fresh run ID.
func NewRunner(title string, groups ...*TaskGroup) *Runner {
	return &Runner{
		Title:  title,
		Groups: groups,
		runID:  uuid.NewString(),
	}
}

// RunID returns the unique identifier of this runner instance.
func (r *Runner) RunID() string {
	if r.runID == "" {
		r.runID = uuid.NewString()
	}

	return r.runID
}

// Execute runs every group in order and returns the aggregate result. On the
// first group failure the failing group's tasks are terminated, the
// remaining groups are marked skipped, and execution stops.
func (r *Runner) Execute(ctx context.Context, opts Options) *RunResult {
	runID := r.RunID()
	logger := ctxlog.Logger(ctx).With("runner", r.Title, "runID", runID)
	ctx = ctxlog.New(ctx, logger)

	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.NewNullReporter()
		opts.Reporter = reporter
	}

	opts = opts.withPath(r.Title)

	logger.Info("starting run", "groups", len(r.Groups))
	reporter.Report(progress.Event{
		Path:      []string{r.Title},
		Type:      progress.EventRunStarted,
		Message:   fmt.Sprintf("Starting %s", r.Title),
		Timestamp: time.Now(),
	})

	res := &RunResult{
		Title:       r.Title,
		RunID:       runID,
		Status:      StatusSuccess,
		FailedGroup: -1,
		Groups:      make([]*GroupResult, 0, len(r.Groups)),
	}

	for i, g := range r.Groups {
		// Blocking: the next group must not start until this one is done.
		gr := g.Execute(ctx, opts)
		res.Groups = append(res.Groups, gr)

		if gr.Status == StatusSuccess {
			continue
		}

		logger.Info("group failed, aborting run", "group", g.Title, "index", i)

		// Execute already terminated the group; repeating is a no-op and
		// covers results built by callers outside Execute.
		g.Terminate()

		res.Status = StatusFailed
		res.FailedGroup = i
		res.Err = gr.Err

		for _, skipped := range r.Groups[i+1:] {
			res.Groups = append(res.Groups, &GroupResult{
				Label:  skipped.Title,
				Status: StatusSkipped,
				Err:    ErrGroupSkipped,
			})
		}

		break
	}

	msg := fmt.Sprintf("Finished %s", r.Title)
	if res.Status != StatusSuccess {
		msg = fmt.Sprintf("%s failed at group %d, remaining groups skipped", r.Title, res.FailedGroup)
	}

	logger.Info("run finished", "status", res.Status.String())
	reporter.Report(progress.Event{
		Path:      []string{r.Title},
		Type:      progress.EventRunFinished,
		Message:   msg,
		Err:       res.Err,
		Timestamp: time.Now(),
	})

	return res
}
