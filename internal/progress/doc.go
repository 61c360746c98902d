// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress defines the events emitted while a run executes and the
// reporter/listener plumbing that carries them to the console or the TUI.
// Reporting is best-effort: reporters never block the run manager's control
// loop, and events may be dropped under backpressure.
package progress
