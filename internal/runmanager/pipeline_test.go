// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPipelineStartNext_Order(t *testing.T) {
	defer goleak.VerifyNone(t)

	t1 := &Task{Title: "first", Path: "/bin/echo", Args: []string{"1"}}
	t2 := &Task{Title: "second", Path: "/bin/echo", Args: []string{"2"}}
	p := NewPipeline("two stages", t1, t2)

	assert.Nil(t, p.Current(), "no current stage before first start")
	assert.False(t, p.Finished())

	got := p.StartNext("", nil)
	require.Same(t, t1, got)
	assert.Same(t, t1, p.Current())
	waitFinished(t, t1)

	got = p.StartNext("", nil)
	require.Same(t, t2, got)
	assert.Same(t, t2, p.Current())
	waitFinished(t, t2)

	assert.Nil(t, p.StartNext("", nil), "exhausted pipeline returns nil")
	assert.True(t, p.Finished())
	assert.True(t, p.Succeeded())
}

func TestPipelineFinished_AfterStageFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	t1 := &Task{Title: "fails", Path: "/bin/sh", Args: []string{"-c", "exit 1"}}
	t2 := &Task{Title: "unreachable", Path: "/bin/echo"}
	p := NewPipeline("broken chain", t1, t2)

	require.Same(t, t1, p.StartNext("", nil))
	waitFinished(t, t1)

	// The failed stage makes the rest of the chain unreachable, so the
	// pipeline is finished even though the second stage never ran.
	assert.True(t, p.Finished())
	assert.False(t, p.Succeeded())
	assert.False(t, t2.Started())

	results := p.Results()
	require.Len(t, results, 2)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, StatusSkipped, results[1].Status)
	assert.Equal(t, -1, results[1].ExitCode)
}

func TestPipelineSingle(t *testing.T) {
	task := &Task{Title: "solo", Path: "/bin/true"}
	p := Single(task)

	assert.Equal(t, "solo", p.Title)
	require.Len(t, p.Stages, 1)
	assert.Same(t, task, p.Stages[0])
}

func TestPipelineResults_NeverStarted(t *testing.T) {
	p := NewPipeline("untouched",
		&Task{Title: "a", Path: "/bin/true"},
		&Task{Title: "b", Path: "/bin/true"},
	)

	results := p.Results()
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Equal(t, StatusSkipped, r.Status)
	}
}
