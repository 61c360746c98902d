// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitFinished(t *testing.T, task *Task) {
	t.Helper()

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish in time")
	}
}

func TestTaskStart_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := &Task{
		Title: "echo test",
		Path:  "/bin/echo",
		Args:  []string{"hello"},
	}

	require.NoError(t, task.Start("", nil))
	waitFinished(t, task)

	assert.True(t, task.Started(), "expected task to be started")
	assert.True(t, task.Finished(), "expected task to be finished")
	assert.True(t, task.Succeeded(), "expected task to succeed")

	res := task.Result()
	require.NotNil(t, res)
	assert.Equal(t, 0, res.ExitCode, "expected exit code 0")
	assert.Equal(t, StatusSuccess, res.Status)
	require.NoError(t, res.Err)
}

func TestTaskStart_NonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := &Task{
		Title: "fail test",
		Path:  "/bin/sh",
		Args:  []string{"-c", "echo boom >&2; exit 3"},
	}

	require.NoError(t, task.Start("", nil))
	waitFinished(t, task)

	assert.True(t, task.Finished(), "expected task to be finished")
	assert.False(t, task.Succeeded(), "finished must not imply succeeded")

	res := task.Result()
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode, "expected exit code 3")
	assert.Equal(t, StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, ErrNonZeroExit)
	assert.Contains(t, string(res.Stderr), "boom", "expected stderr to be captured")
}

func TestTaskStart_NotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := &Task{
		Title: "missing test",
		Path:  "definitely-not-a-real-binary-xyz",
	}

	err := task.Start("", nil)
	require.ErrorIs(t, err, ErrCouldNotStartProcess)

	// A spawn failure still counts as finished and failed, so polling
	// loops handle it without a special case.
	assert.True(t, task.Finished(), "spawn failure must be observable as finished")
	assert.False(t, task.Succeeded())

	res := task.Result()
	require.NotNil(t, res)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, -1, res.ExitCode)
}

func TestTaskStart_Twice(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := &Task{
		Title: "double start",
		Path:  "/bin/echo",
		Args:  []string{"once"},
	}

	require.NoError(t, task.Start("", nil))
	require.ErrorIs(t, task.Start("", nil), ErrAlreadyStarted)

	waitFinished(t, task)
	assert.True(t, task.Succeeded(), "first start must be unaffected")
}

func TestTaskStart_StdoutRedirect(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()

	task := &Task{
		Title:      "redirect test",
		Path:       "/bin/echo",
		Args:       []string{"redirected"},
		StdoutPath: "out.txt",
	}

	require.NoError(t, task.Start(dir, nil))
	waitFinished(t, task)
	require.True(t, task.Succeeded())

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "redirected")
}

func TestTaskStart_EnvPassthrough(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()

	task := &Task{
		Title:      "env test",
		Path:       "/bin/sh",
		Args:       []string{"-c", "printf %s \"$RADRUN_TEST_VALUE\""},
		StdoutPath: "env.txt",
	}

	require.NoError(t, task.Start(dir, map[string]string{"RADRUN_TEST_VALUE": "forty-two"}))
	waitFinished(t, task)
	require.True(t, task.Succeeded())

	data, err := os.ReadFile(filepath.Join(dir, "env.txt"))
	require.NoError(t, err)
	assert.Equal(t, "forty-two", string(data))
}

func TestTaskTerminate(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := &Task{
		Title: "terminate test",
		Path:  "/bin/sleep",
		Args:  []string{"30"},
	}

	require.NoError(t, task.Start("", nil))
	require.True(t, task.Running(), "expected task to be running")

	task.Terminate()
	waitFinished(t, task)

	res := task.Result()
	require.NotNil(t, res)
	assert.Equal(t, StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, ErrTerminated)

	// Terminating again after exit is a no-op.
	task.Terminate()
}

func TestTaskTerminate_BeforeStart(t *testing.T) {
	task := &Task{Title: "never started", Path: "/bin/true"}

	task.Terminate()

	assert.False(t, task.Started())
	assert.Nil(t, task.Result())
}

func TestTaskProgressPct(t *testing.T) {
	fs := afero.NewMemMapFs()

	task := &Task{
		Title:        "progress test",
		Path:         "/bin/true",
		OutputPath:   "/work/results.ill",
		ExpectedSize: 200,
		Fs:           fs,
	}

	assert.InDelta(t, 0, task.ProgressPct(), 0.001, "not started means zero progress")

	// Fake a started task without spawning anything.
	task.mu.Lock()
	task.started = true
	task.outputPath = task.OutputPath
	task.mu.Unlock()

	assert.InDelta(t, -1, task.ProgressPct(), 0.001, "missing output file means no estimate")

	require.NoError(t, afero.WriteFile(fs, "/work/results.ill", make([]byte, 50), 0o644))
	assert.InDelta(t, 25, task.ProgressPct(), 0.001)

	require.NoError(t, afero.WriteFile(fs, "/work/results.ill", make([]byte, 500), 0o644))
	assert.InDelta(t, 100, task.ProgressPct(), 0.001, "progress is capped at 100")
}

func TestTaskProgressPct_NoHint(t *testing.T) {
	task := &Task{
		Title: "no hint",
		Path:  "/bin/true",
	}

	task.mu.Lock()
	task.started = true
	task.mu.Unlock()

	assert.InDelta(t, -1, task.ProgressPct(), 0.001)
}

func TestTaskProgressReport(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := &Task{
		Title: "report test",
		Path:  "/bin/echo",
		Args:  []string{"hi"},
	}

	assert.Contains(t, task.ProgressReport(), "is not started")

	require.NoError(t, task.Start("", nil))
	waitFinished(t, task)

	assert.Contains(t, task.ProgressReport(), "Finished report test successfully")
}
