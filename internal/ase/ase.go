// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ase computes Annual Sunlight Exposure from Radiance annual
// illuminance results. The input is a whitespace-separated matrix with one
// row per sensor point and one column per timestep, optionally preceded by
// a Radiance information header.
package ase

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const (
	// DefaultThresholdLux is the direct illuminance above which a timestep
	// counts as overlit, per LM-83.
	DefaultThresholdLux = 1000.0
	// DefaultHourLimit is the number of overlit hours beyond which a sensor
	// point counts towards the exposure figure, per LM-83.
	DefaultHourLimit = 250
)

var (
	// ErrReadMatrix is returned when the illuminance file cannot be read.
	ErrReadMatrix = errors.New("failed to read illuminance matrix")
	// ErrEmptyMatrix is returned when the file contains no data rows.
	ErrEmptyMatrix = errors.New("illuminance matrix has no data rows")
	// ErrRaggedMatrix is returned when rows have differing column counts.
	ErrRaggedMatrix = errors.New("illuminance matrix rows have differing lengths")
)

// FsFactory returns the filesystem used to read result files. It is a
// variable so tests can substitute an in-memory filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Result holds the exposure figures for one illuminance matrix.
type Result struct {
	Points        int   // Number of sensor points (matrix rows)
	Timesteps     int   // Number of timesteps (matrix columns)
	OverlitPoints int   // Points overlit for more than the hour limit
	HoursPerPoint []int // Overlit hours per point, in row order

	// Percent is the Annual Sunlight Exposure: the percentage of points
	// overlit for more than the hour limit.
	Percent float64
}

// Options configures the exposure calculation. Zero values select the
// LM-83 defaults.
type Options struct {
	ThresholdLux float64 // Illuminance threshold; <= 0 means DefaultThresholdLux
	HourLimit    int     // Overlit hour limit; <= 0 means DefaultHourLimit
}

func (o Options) normalized() Options {
	if o.ThresholdLux <= 0 {
		o.ThresholdLux = DefaultThresholdLux
	}

	if o.HourLimit <= 0 {
		o.HourLimit = DefaultHourLimit
	}

	return o
}

// Compute loads the illuminance matrix at path and derives the exposure.
func Compute(path string, opts Options) (*Result, error) {
	rows, err := readMatrix(path)
	if err != nil {
		return nil, err
	}

	return computeFromRows(rows, opts)
}

func computeFromRows(rows [][]float64, opts Options) (*Result, error) {
	opts = opts.normalized()

	if len(rows) == 0 {
		return nil, ErrEmptyMatrix
	}

	cols := len(rows[0])

	res := &Result{
		Points:        len(rows),
		Timesteps:     cols,
		HoursPerPoint: make([]int, len(rows)),
	}

	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedMatrix, i, len(row), cols)
		}

		for _, v := range row {
			if v > opts.ThresholdLux {
				res.HoursPerPoint[i]++
			}
		}

		if res.HoursPerPoint[i] > opts.HourLimit {
			res.OverlitPoints++
		}
	}

	res.Percent = 100 * float64(res.OverlitPoints) / float64(res.Points)

	return res, nil
}

// readMatrix parses the whitespace-separated float matrix at path, skipping
// a Radiance information header when present.
func readMatrix(path string) ([][]float64, error) {
	f, err := FsFactory().Open(path)
	if err != nil {
		return nil, errors.Join(ErrReadMatrix, err)
	}

	defer f.Close() //nolint:errcheck

	var (
		rows     [][]float64
		inHeader bool
		line     int
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var parseErr *multierror.Error

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())

		// A Radiance header runs from "#?RADIANCE" to the first blank line.
		if line == 1 && strings.HasPrefix(text, "#?RADIANCE") {
			inHeader = true
			continue
		}

		if inHeader {
			if text == "" {
				inHeader = false
			}

			continue
		}

		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		row := make([]float64, 0, len(fields))

		for _, fld := range fields {
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				parseErr = multierror.Append(parseErr, fmt.Errorf("line %d: %w", line, err))
				continue
			}

			row = append(row, v)
		}

		rows = append(rows, row)
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Join(ErrReadMatrix, err)
	}

	if err := parseErr.ErrorOrNil(); err != nil {
		return nil, errors.Join(ErrReadMatrix, err)
	}

	return rows, nil
}
