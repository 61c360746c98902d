// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package ase

import (
	"bytes"
	"context"
	"testing"

	internalase "github.com/daylight-tools/radrun/internal/ase"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestAseCmd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/res/direct.ill",
		[]byte("1500 1500 1500\n0 0 0\n"), 0o644))

	stub := gostub.Stub(&internalase.FsFactory, func() afero.Fs { return fs })
	defer stub.Reset()

	buf := new(bytes.Buffer)
	app := &cli.Command{
		Name:     "radrun",
		Commands: []*cli.Command{AseCmd},
		Writer:   buf,
	}

	err := app.Run(context.Background(), []string{
		"radrun", "ase", "--threshold", "1000", "--hours", "2", "--per-point", "/res/direct.ill",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "points: 2")
	assert.Contains(t, out, "timesteps: 3")
	assert.Contains(t, out, "overlit points: 1")
	assert.Contains(t, out, "ASE: 50.0%")
	assert.Contains(t, out, "point 0: 3 h")
}

func TestAseCmd_NoFile(t *testing.T) {
	app := &cli.Command{
		Name:     "radrun",
		Commands: []*cli.Command{AseCmd},
		Writer:   new(bytes.Buffer),
	}

	err := app.Run(context.Background(), []string{"radrun", "ase"})
	require.ErrorIs(t, err, ErrNoResultFile)
}
