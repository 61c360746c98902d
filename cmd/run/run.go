// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the command that executes a YAML plan.
package run

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/daylight-tools/radrun/internal/ctxlog"
	"github.com/daylight-tools/radrun/internal/progress"
	"github.com/daylight-tools/radrun/internal/recipe"
	"github.com/daylight-tools/radrun/internal/runmanager"
	"github.com/daylight-tools/radrun/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag           = "file"
	dirFlag            = "dir"
	envFileFlag        = "env-file"
	outFlag            = "out"
	parallelismFlag    = "parallelism"
	pollIntervalFlag   = "poll-interval"
	groupTimeoutFlag   = "group-timeout"
	tuiFlag            = "tui"
	noOutputStdErrFlag = "no-output-stderr"
	successDetailsFlag = "output-success-details"

	eventBufferSize = 256
	cliExitStr      = ""
)

// RunCmd is the command that executes the groups defined in a YAML plan file.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Execute the simulation plan defined in a YAML file.
Groups in the plan run strictly in order; pipelines within a group run
concurrently up to the parallelism ceiling. The first failing command aborts
its group and skips the remaining groups.

Plan file URLs use Hashicorp's go-getter syntax, which allows fetching files
from local paths, git repositories, HTTP and cloud storage.
See https://github.com/hashicorp/go-getter.
`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "URL of the YAML plan file to run. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      dirFlag,
			Aliases:   []string{"C"},
			Usage:     "Working directory for every command in the plan",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      envFileFlag,
			Usage:     "Dotenv file providing the process environment, overriding the plan's env_file",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Write the result report to the given file as well as stdout",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:    parallelismFlag,
			Aliases: []string{"p"},
			Usage: "Maximum number of concurrent commands per group. " +
				"Defaults to the number of CPU cores available.",
			Value: 0,
		},
		&cli.DurationFlag{
			Name:     pollIntervalFlag,
			Usage:    "Interval between liveness checks of running commands",
			Value:    runmanager.DefaultPollInterval,
			OnlyOnce: true,
		},
		&cli.DurationFlag{
			Name:     groupTimeoutFlag,
			Usage:    "Timeout applied to groups that do not declare their own. Zero means no timeout.",
			Value:    0,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Run with an interactive terminal interface showing real-time progress",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        noOutputStdErrFlag,
			Aliases:     []string{"no-stderr"},
			Usage:       "Exclude captured stderr from the result report",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        successDetailsFlag,
			Aliases:     []string{"success"},
			Usage:       "Include details for successful commands in the result report",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	url := cmd.String(fileFlag)
	if url == "" {
		logger.Error("Please specify the plan file URL using the --file or -f flag.")
		return cli.Exit(cliExitStr, 1)
	}

	plan, err := recipe.Fetch(ctx, url)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load plan from %s: %s", url, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if f := cmd.String(envFileFlag); f != "" {
		plan.EnvFile = f
	}

	env, err := plan.Environment()
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to resolve environment: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	runner, err := plan.Build()
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to build plan %s: %s", plan.Name, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	parallelism := cmd.Int(parallelismFlag)
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	opts := runmanager.Options{
		MaxConcurrency: parallelism,
		Dir:            cmd.String(dirFlag),
		Env:            env,
		PollInterval:   cmd.Duration(pollIntervalFlag),
		Timeout:        cmd.Duration(groupTimeoutFlag),
	}

	var res *runmanager.RunResult

	switch cmd.Bool(tuiFlag) {
	case true:
		logger.Info("Starting interactive TUI mode...")

		// Buffer log output so it does not corrupt the TUI display.
		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		tuiRunner := tui.NewRunner(tuiCtx)

		var tuiErr error

		res, tuiErr = tuiRunner.Run(tuiCtx, runner, opts)

		buf.WriteTo(cmd.Writer) //nolint:errcheck

		if tuiErr != nil {
			logger.Error(fmt.Sprintf("TUI error: %s", tuiErr.Error()))
		}
	default:
		reporter := progress.NewChannelReporter(ctx, eventBufferSize)
		reporter.Listen(progress.NewConsoleListener(cmd.Writer))

		opts.Reporter = reporter

		res = runner.Execute(ctx, opts)

		// Let the listener drain before the report is printed.
		time.Sleep(50 * time.Millisecond)
		reporter.Close()
	}

	outOpts := runmanager.DefaultOutputOptions()
	outOpts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	outOpts.ShowSuccessDetails = cmd.Bool(successDetailsFlag)

	if outFileName := cmd.String(outFlag); outFileName != "" {
		f, err := os.Create(outFileName)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to create output file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		defer f.Close() //nolint:errcheck

		if err := runmanager.WriteText(f, res, outOpts); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results to %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Results written to %s", outFileName))
	}

	if err := runmanager.WriteText(cmd.Writer, res, outOpts); err != nil {
		logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if !res.Succeeded() {
		logger.Error("Some commands failed. See above for details.")
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
