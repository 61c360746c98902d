// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides an interactive terminal interface showing run
// progress as a live tree of groups, pipelines and tasks, with completion
// bars for tasks that declare an expected output size.
package tui
