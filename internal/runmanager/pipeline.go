// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"sync"
)

// Pipeline is an ordered chain of Tasks forming one multi-stage workflow,
// e.g. generate matrix, apply sky vector, convert to illuminance. A stage is
// started only after the previous stage finished successfully; if a stage
// fails, the remaining stages are never started. Membership is fixed at
// construction.
//
// A pipeline occupies a single concurrency slot in its TaskGroup for its
// whole lifetime: the next stage reuses the slot freed by its predecessor.
type Pipeline struct {
	Title  string
	Stages []*Task

	mu   sync.Mutex
	next int // index of the next stage to start
}

// NewPipeline creates a pipeline from ordered stages.
func NewPipeline(title string, stages ...*Task) *Pipeline {
	return &Pipeline{Title: title, Stages: stages}
}

// Single wraps a standalone task in a one-stage pipeline.
func Single(t *Task) *Pipeline {
	return &Pipeline{Title: t.Title, Stages: []*Task{t}}
}

// Current returns the most recently started stage, or nil if none started.
func (p *Pipeline) Current() *Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next == 0 {
		return nil
	}

	return p.Stages[p.next-1]
}

// StartNext starts the next stage in the chain and returns it. It returns
// nil when every stage has already been started. The previous stage must
// have finished successfully; this is the caller's (the group loop's)
// responsibility.
func (p *Pipeline) StartNext(dir string, env map[string]string) *Task {
	p.mu.Lock()

	if p.next >= len(p.Stages) {
		p.mu.Unlock()
		return nil
	}

	t := p.Stages[p.next]
	p.next++
	p.mu.Unlock()

	// A spawn failure is recorded on the task itself; the polling loop
	// observes it as finished-and-failed.
	_ = t.Start(dir, env)

	return t
}

// Running reports whether any stage currently owns a live process.
func (p *Pipeline) Running() bool {
	for _, t := range p.Stages {
		if t.Running() {
			return true
		}
	}

	return false
}

// Finished reports whether the pipeline has no more work: every stage
// finished, or a failed stage made the rest unreachable.
func (p *Pipeline) Finished() bool {
	if p.abandoned() && !p.Running() {
		return true
	}

	for _, t := range p.Stages {
		if !t.Finished() {
			return false
		}
	}

	return true
}

// Succeeded reports whether every stage finished successfully.
func (p *Pipeline) Succeeded() bool {
	for _, t := range p.Stages {
		if !t.Succeeded() {
			return false
		}
	}

	return true
}

// Terminate force-kills any running stage. Idempotent.
func (p *Pipeline) Terminate() {
	for _, t := range p.Stages {
		t.Terminate()
	}
}

// Results returns one result per stage in order. Stages that never started
// are reported as skipped.
func (p *Pipeline) Results() Results {
	out := make(Results, 0, len(p.Stages))

	for _, t := range p.Stages {
		if res := t.Result(); res != nil {
			out = append(out, res)
			continue
		}

		out = append(out, &Result{
			Label:    t.Title,
			Status:   StatusSkipped,
			ExitCode: -1,
		})
	}

	return out
}

// abandoned reports whether an already-finished stage failed, which makes
// the not-yet-started remainder of the chain unreachable.
func (p *Pipeline) abandoned() bool {
	for _, t := range p.Stages {
		if t.Finished() && !t.Succeeded() {
			return true
		}
	}

	return false
}
