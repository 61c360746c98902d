// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/daylight-tools/radrun/internal/color"
)

// ConsoleListener writes progress events as indented status lines, one level
// of dots per hierarchy level below the run.
type ConsoleListener struct {
	w  io.Writer
	mu sync.Mutex
}

// NewConsoleListener creates a ConsoleListener writing to w.
func NewConsoleListener(w io.Writer) *ConsoleListener {
	return &ConsoleListener{w: w}
}

// OnEvent implements Listener.
func (cl *ConsoleListener) OnEvent(event Event) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	indent := strings.Repeat(".", max(len(event.Path)-1, 0))

	msg := event.Message

	switch event.Type {
	case EventTaskFinished, EventGroupFinished:
		msg = color.Colorize(msg, color.FgGreen)
	case EventTaskFailed, EventGroupFailed:
		msg = color.Colorize(msg, color.FgRed)
	}

	fmt.Fprintf(cl.w, "%s%s\n", indent, msg) //nolint:errcheck
}
