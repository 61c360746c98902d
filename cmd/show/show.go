// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the command that prints a plan without running it.
package show

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daylight-tools/radrun/internal/color"
	"github.com/daylight-tools/radrun/internal/recipe"
	"github.com/urfave/cli/v3"
)

const fileArg = "file"

// ErrNoPlanFile is returned when no plan file argument is given.
var ErrNoPlanFile = errors.New("no plan file specified")

// ShowCmd is the command that loads a plan file and prints its structure.
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Load a plan file, validate it, and print its structure without running anything.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.StringArg(fileArg)
		if path == "" {
			return ErrNoPlanFile
		}

		plan, err := recipe.Fetch(ctx, path)
		if err != nil {
			return err
		}

		writePlan(cmd, plan)

		return nil
	},
}

func writePlan(cmd *cli.Command, plan *recipe.Plan) {
	fmt.Fprintf(cmd.Writer, "%s\n", color.Colorize(plan.Name, color.Bold)) //nolint:errcheck

	if plan.EnvFile != "" {
		fmt.Fprintf(cmd.Writer, "  env file: %s\n", plan.EnvFile) //nolint:errcheck
	}

	for k, v := range plan.Env {
		fmt.Fprintf(cmd.Writer, "  env: %s=%s\n", k, v) //nolint:errcheck
	}

	for gi, g := range plan.Groups {
		timeout := ""
		if g.Timeout != "" {
			timeout = fmt.Sprintf(" (timeout %s)", g.Timeout)
		}

		fmt.Fprintf(cmd.Writer, "%d. %s%s\n", gi+1, color.Colorize(g.Name, color.FgCyan), timeout) //nolint:errcheck

		for _, pl := range g.Pipelines {
			name := pl.Name
			if name == "" && len(pl.Stages) > 0 {
				name = pl.Stages[0].Title
			}

			fmt.Fprintf(cmd.Writer, "   %s\n", name) //nolint:errcheck

			for _, s := range pl.Stages {
				line := strings.Join(s.Cmd, " ")
				if s.StdoutFile != "" {
					line += " > " + s.StdoutFile
				}

				fmt.Fprintf(cmd.Writer, "     $ %s\n", line) //nolint:errcheck

				switch {
				case s.OutputFile != "" && s.ExpectedSize > 0:
					fmt.Fprintf(cmd.Writer, "       produces %s (%d bytes expected)\n", //nolint:errcheck
						s.OutputFile, s.ExpectedSize)
				case s.OutputFile != "":
					fmt.Fprintf(cmd.Writer, "       produces %s\n", s.OutputFile) //nolint:errcheck
				}
			}
		}
	}
}
