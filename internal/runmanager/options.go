// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"time"

	"github.com/daylight-tools/radrun/internal/progress"
)

// DefaultPollInterval is the sleep between liveness checks when Options does
// not specify one.
const DefaultPollInterval = 500 * time.Millisecond

// Options configures a group or runner execution. The working directory and
// environment are shared read-only configuration passed down unchanged from
// Runner to TaskGroup to Task.
//
// MaxConcurrency bounds simultaneously running tasks per TaskGroup, not
// globally across the Runner; callers with a global budget must divide it
// across groups themselves.
type Options struct {
	MaxConcurrency int               // Concurrency ceiling per group; clamped to [1, group size]
	Dir            string            // Working directory for every task
	Env            map[string]string // Environment added to the inherited process environment
	PollInterval   time.Duration     // Sleep between liveness checks; <= 0 means DefaultPollInterval
	Timeout        time.Duration     // Per-group timeout; 0 means no timeout
	Reporter       progress.Reporter // Progress sink; nil means no reporting

	path []string // parent labels for event paths, set by Runner
}

// normalized applies the documented clamping rules for a group of n
// pipelines: a non-positive ceiling becomes 1, a ceiling above n becomes n.
func (o Options) normalized(n int) Options {
	if o.MaxConcurrency < 1 {
		o.MaxConcurrency = 1
	}

	if n > 0 && o.MaxConcurrency > n {
		o.MaxConcurrency = n
	}

	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}

	if o.Reporter == nil {
		o.Reporter = progress.NewNullReporter()
	}

	return o
}

// withPath returns a copy of the options with the given labels appended to
// the event path prefix.
func (o Options) withPath(labels ...string) Options {
	p := make([]string, 0, len(o.path)+len(labels))
	p = append(p, o.path...)
	p = append(p, labels...)
	o.path = p

	return o
}
