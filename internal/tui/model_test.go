// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daylight-tools/radrun/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeNode(t *testing.T) {
	path := []string{"study", "matrices"}
	name := "matrices"

	node := NewTreeNode(path, name)

	require.NotNil(t, node)
	assert.Equal(t, path, node.Path)
	assert.Equal(t, name, node.Name)
	assert.Equal(t, StatusPending, node.Status)
	assert.Nil(t, node.StartTime)
	assert.Nil(t, node.EndTime)
	assert.InDelta(t, -1, node.Percent, 0.001)
	assert.Empty(t, node.ErrorMsg)
	assert.Empty(t, node.Children)
}

func TestTreeNode_UpdateStatus(t *testing.T) {
	node := NewTreeNode([]string{"study"}, "study")

	node.UpdateStatus(StatusRunning)
	status, _, _, _, _, startTime, endTime := node.displayInfo()
	assert.Equal(t, StatusRunning, status)
	assert.NotNil(t, startTime)
	assert.Nil(t, endTime)

	node.UpdateStatus(StatusSuccess)
	status, _, _, _, _, startTime, endTime = node.displayInfo()
	assert.Equal(t, StatusSuccess, status)
	assert.NotNil(t, startTime)
	assert.NotNil(t, endTime)
}

func TestTreeNode_UpdateProgress(t *testing.T) {
	node := NewTreeNode([]string{"study"}, "study")

	node.UpdateProgress(42.5, "  rfluxmtx is 42.5% complete  ")
	_, _, percent, message, _, _, _ := node.displayInfo()
	assert.InDelta(t, 42.5, percent, 0.001)
	assert.Equal(t, "rfluxmtx is 42.5% complete", message)

	// An empty message leaves the previous one in place.
	node.UpdateProgress(50, "")
	_, _, percent, message, _, _, _ = node.displayInfo()
	assert.InDelta(t, 50, percent, 0.001)
	assert.Equal(t, "rfluxmtx is 42.5% complete", message)
}

func TestModel_GetOrCreateNode(t *testing.T) {
	m := NewModel(context.Background())

	path := []string{"study", "matrices", "south", "rfluxmtx"}
	node := m.getOrCreateNode(path, "rfluxmtx")
	require.NotNil(t, node)

	// The whole hierarchy above the task exists now.
	assert.Len(t, m.rootNode.Children, 1)
	assert.Equal(t, "study", m.rootNode.Children[0].Name)
	assert.Equal(t, "matrices", m.rootNode.Children[0].Children[0].Name)
	assert.Equal(t, "south", m.rootNode.Children[0].Children[0].Children[0].Name)

	// Requesting the same path returns the same node.
	again := m.getOrCreateNode(path, "rfluxmtx")
	assert.Same(t, node, again)
	assert.Len(t, m.rootNode.Children, 1)
}

func TestModel_ProcessProgressEvent(t *testing.T) {
	m := NewModel(context.Background())

	m.processProgressEvent(progress.Event{
		Path:      []string{"study", "matrices", "south", "rfluxmtx"},
		Type:      progress.EventTaskStarted,
		Timestamp: time.Now(),
	})

	node := m.getOrCreateNode([]string{"study", "matrices", "south", "rfluxmtx"}, "rfluxmtx")
	status, _, _, _, _, _, _ := node.displayInfo()
	assert.Equal(t, StatusRunning, status)

	m.processProgressEvent(progress.Event{
		Path:    []string{"study", "matrices", "south", "rfluxmtx"},
		Type:    progress.EventTaskProgress,
		Percent: 60,
		Message: "rfluxmtx is 60.0% complete",
	})

	_, _, percent, _, _, _, _ := node.displayInfo()
	assert.InDelta(t, 60, percent, 0.001)

	m.processProgressEvent(progress.Event{
		Path: []string{"study", "matrices", "south", "rfluxmtx"},
		Type: progress.EventTaskFailed,
		Err:  errors.New("exit code 1"),
	})

	status, _, _, _, errMsg, _, _ := node.displayInfo()
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "exit code 1", errMsg)
}

func TestReporter_ClosedDropsEvents(t *testing.T) {
	r := NewReporter(nil)
	r.Close()

	// Must not panic with a nil program after close.
	r.Report(progress.Event{Type: progress.EventTaskStarted})
}

func TestNodeStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
