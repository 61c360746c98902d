// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runmanager executes batches of external commands, typically
// Radiance binaries, with bounded parallelism.
//
// The model is two-level and fixed at construction time. A Runner owns an
// ordered list of TaskGroups and runs them strictly one after another; a
// group never starts while the previous one has work outstanding, and a
// failed group aborts the rest. A TaskGroup owns a set of Pipelines that run
// concurrently under a shared concurrency ceiling; each Pipeline is an
// ordered chain of Tasks where a stage starts only after its predecessor
// succeeded, because each stage consumes the previous stage's output file.
//
// Scheduling is a single control goroutine that polls task liveness at a
// configurable interval. Tasks record their exit state from a waiter
// goroutine, so polling never blocks on process exit and a failure anywhere
// in the group is observed promptly regardless of completion order. The
// first observed failure terminates every running task in the group
// (fail-fast) and is propagated as a status value, not a panic.
package runmanager
