// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestShowCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: echo study
env:
  RAYPATH: /usr/local/lib/ray
groups:
  - name: only
    timeout: 5m
    pipelines:
      - stages:
          - title: say hello
            cmd: ["/bin/echo", "hello"]
            stdout_file: out/hello.txt
            output_file: out/hello.txt
            expected_size: 6
`), 0o644))

	buf := new(bytes.Buffer)
	app := &cli.Command{
		Name:     "radrun",
		Commands: []*cli.Command{ShowCmd},
		Writer:   buf,
	}

	require.NoError(t, app.Run(context.Background(), []string{"radrun", "show", path}))

	out := buf.String()
	assert.Contains(t, out, "echo study")
	assert.Contains(t, out, "RAYPATH=/usr/local/lib/ray")
	assert.Contains(t, out, "1. only (timeout 5m)")
	assert.Contains(t, out, "$ /bin/echo hello > out/hello.txt")
	assert.Contains(t, out, "produces out/hello.txt (6 bytes expected)")
}

func TestShowCmd_NoFile(t *testing.T) {
	app := &cli.Command{
		Name:     "radrun",
		Commands: []*cli.Command{ShowCmd},
		Writer:   new(bytes.Buffer),
	}

	err := app.Run(context.Background(), []string{"radrun", "show"})
	require.ErrorIs(t, err, ErrNoPlanFile)
}
