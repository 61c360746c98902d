// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/daylight-tools/radrun/cmd/ase"
	"github.com/daylight-tools/radrun/cmd/run"
	"github.com/daylight-tools/radrun/cmd/show"
	"github.com/urfave/cli/v3"
)

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
		ase.AseCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "radrun",
	Description: `Radrun executes batches of Radiance simulation commands described
in YAML plan files. Plans are organised into sequential groups of concurrent
pipelines: groups run strictly one after another, while the pipelines inside a
group run in parallel up to a configurable ceiling. A failing command stops
its group and skips the rest of the run.`,
	Usage:                 "radrun run -f study.yaml",
	Version:               Version,
	Copyright:             "Copyright (c) daylight-tools 2026. All rights reserved.",
	EnableShellCompletion: true,
}
