// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlanYAML = `
name: daylight study
env:
  RAYPATH: /usr/local/lib/ray
groups:
  - name: matrices
    timeout: 30m
    pipelines:
      - name: south zone
        stages:
          - title: daylight matrix
            cmd: ["rfluxmtx", "-ab", "5", "scene.rad"]
            stdout_file: out/south.dmx
          - title: illuminance
            cmd: ["dctimestep", "out/south.dmx", "sky.smx"]
            stdout_file: out/south.ill
            output_file: out/south.ill
            expected_size: 1048576
  - name: post-process
    pipelines:
      - stages:
          - title: summarise
            cmd: ["rmtxop", "-fa", "out/south.ill"]
`

func TestParse_Valid(t *testing.T) {
	p, err := Parse([]byte(validPlanYAML))
	require.NoError(t, err)

	assert.Equal(t, "daylight study", p.Name)
	assert.Equal(t, "/usr/local/lib/ray", p.Env["RAYPATH"])
	require.Len(t, p.Groups, 2)

	g := p.Groups[0]
	assert.Equal(t, "matrices", g.Name)
	assert.Equal(t, "30m", g.Timeout)
	require.Len(t, g.Pipelines, 1)
	require.Len(t, g.Pipelines[0].Stages, 2)

	s := g.Pipelines[0].Stages[1]
	assert.Equal(t, "illuminance", s.Title)
	assert.Equal(t, []string{"dctimestep", "out/south.dmx", "sky.smx"}, s.Cmd)
	assert.Equal(t, "out/south.ill", s.OutputFile)
	assert.Equal(t, int64(1048576), s.ExpectedSize)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"))
	require.ErrorIs(t, err, ErrParsePlan)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	p := &Plan{
		Groups: []GroupDef{
			{
				Timeout: "not-a-duration",
				Pipelines: []PipelineDef{
					{Stages: []StageDef{{Title: "no command"}}},
					{Stages: []StageDef{{Title: "bad size", Cmd: []string{"true"}, ExpectedSize: -1}}},
				},
			},
		},
	}

	err := p.Validate()
	require.ErrorIs(t, err, ErrInvalidPlan)

	msg := err.Error()
	assert.Contains(t, msg, "plan name is required")
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "not-a-duration")
	assert.Contains(t, msg, "cmd is required")
	assert.Contains(t, msg, "must not be negative")
}

func TestValidate_ExpectedSizeRequiresOutputFile(t *testing.T) {
	p := &Plan{
		Name: "p",
		Groups: []GroupDef{
			{
				Name: "g",
				Pipelines: []PipelineDef{
					{Stages: []StageDef{{Title: "s", Cmd: []string{"true"}, ExpectedSize: 10}}},
				},
			},
		},
	}

	err := p.Validate()
	require.ErrorIs(t, err, ErrInvalidPlan)
	assert.Contains(t, err.Error(), "expected_size requires output_file")
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plans/study.yaml", []byte(validPlanYAML), 0o644))

	stub := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stub.Reset()

	p, err := Load("/plans/study.yaml")
	require.NoError(t, err)
	assert.Equal(t, "daylight study", p.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	stub := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewMemMapFs() })
	defer stub.Reset()

	_, err := Load("/nope.yaml")
	require.ErrorIs(t, err, ErrReadPlanFile)
}
