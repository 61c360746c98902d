// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ase implements the command that computes Annual Sunlight Exposure
// from an annual direct illuminance result file.
package ase

import (
	"context"
	"errors"
	"fmt"

	"github.com/daylight-tools/radrun/internal/ase"
	"github.com/daylight-tools/radrun/internal/color"
	"github.com/urfave/cli/v3"
)

const (
	fileArg       = "file"
	thresholdFlag = "threshold"
	hoursFlag     = "hours"
	perPointFlag  = "per-point"
)

// ErrNoResultFile is returned when no illuminance file argument is given.
var ErrNoResultFile = errors.New("no illuminance file specified")

// AseCmd is the command that derives Annual Sunlight Exposure figures from a
// direct illuminance matrix produced by a run.
var AseCmd = &cli.Command{
	Name: "ase",
	Description: `Compute Annual Sunlight Exposure from an annual direct illuminance matrix.
The input file has one row per sensor point and one whitespace-separated
column per timestep, optionally preceded by a Radiance information header.
A point counts towards the exposure when its direct illuminance exceeds the
threshold for more than the given number of hours.`,
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Flags: []cli.Flag{
		&cli.FloatFlag{
			Name:     thresholdFlag,
			Usage:    "Direct illuminance threshold in lux",
			Value:    ase.DefaultThresholdLux,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     hoursFlag,
			Usage:    "Overlit hours beyond which a point counts towards the exposure",
			Value:    ase.DefaultHourLimit,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        perPointFlag,
			Usage:       "Also print overlit hours for every sensor point",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		path := cmd.StringArg(fileArg)
		if path == "" {
			return ErrNoResultFile
		}

		res, err := ase.Compute(path, ase.Options{
			ThresholdLux: cmd.Float(thresholdFlag),
			HourLimit:    cmd.Int(hoursFlag),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.Writer, "points: %d\n", res.Points)                //nolint:errcheck
		fmt.Fprintf(cmd.Writer, "timesteps: %d\n", res.Timesteps)          //nolint:errcheck
		fmt.Fprintf(cmd.Writer, "overlit points: %d\n", res.OverlitPoints) //nolint:errcheck

		summary := color.Colorize(fmt.Sprintf("ASE: %.1f%%", res.Percent), color.Bold, color.FgCyan)
		fmt.Fprintf(cmd.Writer, "%s\n", summary) //nolint:errcheck

		if cmd.Bool(perPointFlag) {
			for i, h := range res.HoursPerPoint {
				fmt.Fprintf(cmd.Writer, "point %d: %d h\n", i, h) //nolint:errcheck
			}
		}

		return nil
	},
}
