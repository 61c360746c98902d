// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package runmanager

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr places each task in its own process group so that a terminate
// reaches children spawned by the command as well (Radiance wrappers fork).
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcess kills the whole process group, falling back to the single
// process if the group is already gone.
func killProcess(ps *os.Process) {
	if err := unix.Kill(-ps.Pid, unix.SIGKILL); err == nil || errors.Is(err, unix.ESRCH) {
		return
	}

	_ = ps.Kill()
}
