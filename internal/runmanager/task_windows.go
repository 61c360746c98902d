// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package runmanager

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcess(ps *os.Process) {
	_ = ps.Kill()
}
