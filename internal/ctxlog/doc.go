// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-carried slog logger with a pretty console
// handler. The log level is read from an environment variable derived from
// the executable name (e.g. RADRUN_LOG_LEVEL), one of DEBUG, INFO, WARN or
// ERROR; anything else defaults to WARN.
package ctxlog
