// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/daylight-tools/radrun/internal/runmanager"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// ErrReadEnvFile is returned when the plan's env_file cannot be read or parsed.
var ErrReadEnvFile = errors.New("failed to read env file")

// Build converts a validated plan into an executable runner.
func (p *Plan) Build() (*runmanager.Runner, error) {
	groups := make([]*runmanager.TaskGroup, 0, len(p.Groups))

	for _, g := range p.Groups {
		pipelines := make([]*runmanager.Pipeline, 0, len(g.Pipelines))

		for _, pl := range g.Pipelines {
			stages := make([]*runmanager.Task, 0, len(pl.Stages))

			for _, s := range pl.Stages {
				stages = append(stages, s.task())
			}

			name := pl.Name
			if name == "" {
				name = stages[0].Title
			}

			pipelines = append(pipelines, runmanager.NewPipeline(name, stages...))
		}

		tg := runmanager.NewTaskGroup(g.Name, pipelines...)

		if g.Timeout != "" {
			// Validated at load time; a failure here would be a programming
			// mistake, so it falls through to no timeout.
			tg.Timeout, _ = parseTimeout(g.Timeout)
		}

		groups = append(groups, tg)
	}

	return runmanager.NewRunner(p.Name, groups...), nil
}

// task converts a stage definition to a runnable task.
func (s StageDef) task() *runmanager.Task {
	title := s.Title
	if title == "" {
		title = s.Cmd[0]
	}

	return &runmanager.Task{
		Title:        title,
		Path:         s.Cmd[0],
		Args:         s.Cmd[1:],
		StdoutPath:   s.StdoutFile,
		OutputPath:   s.OutputFile,
		ExpectedSize: s.ExpectedSize,
	}
}

// Environment resolves the plan's process environment: variables from
// env_file first, overridden by the plan's inline env block.
func (p *Plan) Environment() (map[string]string, error) {
	env := make(map[string]string)

	if p.EnvFile != "" {
		data, err := afero.ReadFile(FsFactory(), p.EnvFile)
		if err != nil {
			return nil, errors.Join(ErrReadEnvFile, err)
		}

		fileEnv, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return nil, errors.Join(ErrReadEnvFile, err)
		}

		maps.Copy(env, fileEnv)
	}

	maps.Copy(env, p.Env)

	return env, nil
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
	}

	return d, nil
}
