// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

var (
	// ErrReadPlanFile is returned when the plan file cannot be read.
	ErrReadPlanFile = errors.New("failed to read plan file")
	// ErrParsePlan is returned when the plan YAML cannot be parsed.
	ErrParsePlan = errors.New("failed to parse plan")
	// ErrInvalidPlan is returned when the plan fails validation.
	ErrInvalidPlan = errors.New("invalid plan")
)

// FsFactory returns the filesystem used to read plan and env files.
// It is a variable so tests can substitute an in-memory filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Plan is the YAML description of a run: named groups of pipelines, each
// pipeline an ordered list of command stages. Groups execute strictly in
// order; pipelines within a group execute concurrently.
type Plan struct {
	Name    string            `yaml:"name"`
	EnvFile string            `yaml:"env_file,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Groups  []GroupDef        `yaml:"groups"`
}

// GroupDef is one sequential phase of the plan.
type GroupDef struct {
	Name      string        `yaml:"name"`
	Timeout   string        `yaml:"timeout,omitempty"` // Go duration string, e.g. "30m"
	Pipelines []PipelineDef `yaml:"pipelines"`
}

// PipelineDef is an ordered chain of stages sharing one concurrency slot.
// A single-stage pipeline may omit the name; it defaults to the stage title.
type PipelineDef struct {
	Name   string     `yaml:"name,omitempty"`
	Stages []StageDef `yaml:"stages"`
}

// StageDef is a single command invocation. Cmd is an argv vector; the first
// element is the executable. Shell syntax is not interpreted: stdout
// redirection is expressed with stdout_file instead of ">".
type StageDef struct {
	Title        string   `yaml:"title"`
	Cmd          []string `yaml:"cmd"`
	StdoutFile   string   `yaml:"stdout_file,omitempty"`
	OutputFile   string   `yaml:"output_file,omitempty"`
	ExpectedSize int64    `yaml:"expected_size,omitempty"`
}

// Parse decodes a plan from YAML and validates it.
func Parse(data []byte) (*Plan, error) {
	p := new(Plan)
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Join(ErrParsePlan, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Load reads and parses a plan from a local file.
func Load(path string) (*Plan, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadPlanFile, err)
	}

	return Parse(data)
}

// Validate checks the plan for structural errors, accumulating every
// problem rather than stopping at the first.
func (p *Plan) Validate() error {
	var err *multierror.Error

	if p.Name == "" {
		err = multierror.Append(err, errors.New("plan name is required"))
	}

	if len(p.Groups) == 0 {
		err = multierror.Append(err, errors.New("plan must define at least one group"))
	}

	for gi, g := range p.Groups {
		if g.Name == "" {
			err = multierror.Append(err, fmt.Errorf("group %d: name is required", gi))
		}

		if g.Timeout != "" {
			if _, parseErr := parseTimeout(g.Timeout); parseErr != nil {
				err = multierror.Append(err, fmt.Errorf("group %q: %w", g.Name, parseErr))
			}
		}

		if len(g.Pipelines) == 0 {
			err = multierror.Append(err, fmt.Errorf("group %q: must define at least one pipeline", g.Name))
		}

		for pi, pl := range g.Pipelines {
			if len(pl.Stages) == 0 {
				err = multierror.Append(err, fmt.Errorf("group %q pipeline %d: must define at least one stage", g.Name, pi))
			}

			for si, s := range pl.Stages {
				if len(s.Cmd) == 0 {
					err = multierror.Append(err, fmt.Errorf("group %q pipeline %d stage %d: cmd is required", g.Name, pi, si))
				}

				if s.Title == "" && len(s.Cmd) == 0 {
					err = multierror.Append(err, fmt.Errorf("group %q pipeline %d stage %d: title or cmd is required", g.Name, pi, si))
				}

				if s.ExpectedSize < 0 {
					err = multierror.Append(err, fmt.Errorf("group %q pipeline %d stage %d: expected_size must not be negative", g.Name, pi, si))
				}

				if s.ExpectedSize > 0 && s.OutputFile == "" {
					err = multierror.Append(err, fmt.Errorf("group %q pipeline %d stage %d: expected_size requires output_file", g.Name, pi, si))
				}
			}
		}
	}

	if err.ErrorOrNil() != nil {
		return errors.Join(ErrInvalidPlan, err)
	}

	return nil
}
