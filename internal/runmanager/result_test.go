// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestResultsHasError(t *testing.T) {
	ok := Results{
		{Label: "a", Status: StatusSuccess},
		{Label: "b", Status: StatusSkipped},
	}
	assert.False(t, ok.HasError())

	bad := Results{
		{Label: "a", Status: StatusSuccess},
		{Label: "b", Status: StatusFailed, Err: errors.New("boom")},
	}
	assert.True(t, bad.HasError())
}

func TestWriteText(t *testing.T) {
	res := &RunResult{
		Title:       "daylight study",
		RunID:       "0c32f8a1",
		Status:      StatusFailed,
		FailedGroup: 1,
		Err:         errors.Join(ErrTaskFailed, ErrNonZeroExit),
		Groups: []*GroupResult{
			{
				Label:  "matrices",
				Status: StatusSuccess,
				Tasks: Results{
					{Label: "rfluxmtx", Status: StatusSuccess},
				},
			},
			{
				Label:  "simulation",
				Status: StatusFailed,
				Err:    errors.Join(ErrTaskFailed, ErrNonZeroExit),
				Tasks: Results{
					{
						Label:    "rcontrib",
						Status:   StatusFailed,
						ExitCode: 1,
						Err:      ErrNonZeroExit,
						Stderr:   []byte("fatal - bad octree\n"),
					},
				},
			},
			{
				Label:  "post-process",
				Status: StatusSkipped,
				Err:    ErrGroupSkipped,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res, nil))

	out := buf.String()
	assert.Contains(t, out, "daylight study (0c32f8a1)")
	assert.Contains(t, out, "matrices")
	assert.Contains(t, out, "rcontrib")
	assert.Contains(t, out, "(exit code: 1)")
	assert.Contains(t, out, "fatal - bad octree")
	assert.Contains(t, out, "post-process")
	assert.Contains(t, out, ErrGroupSkipped.Error())
}

func TestWriteText_HidesDetailsOnSuccess(t *testing.T) {
	res := &RunResult{
		Title:       "quiet run",
		Status:      StatusSuccess,
		FailedGroup: -1,
		Groups: []*GroupResult{
			{
				Label:  "only",
				Status: StatusSuccess,
				Tasks: Results{
					{Label: "task", Status: StatusSuccess, Stderr: []byte("warning: harmless\n")},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res, nil))
	assert.NotContains(t, buf.String(), "harmless", "success details are hidden by default")

	buf.Reset()
	require.NoError(t, WriteText(&buf, res, &OutputOptions{IncludeStdErr: true, ShowSuccessDetails: true}))
	assert.Contains(t, buf.String(), "harmless")
}
