// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/daylight-tools/radrun/internal/progress"
	"github.com/daylight-tools/radrun/internal/runmanager"
)

const (
	minStatusBarAvailableHeight = 10
	minViewportWidth            = 20
	progressBarWidth            = 24
	durationRounding            = 100 * time.Millisecond
	ellipsis                    = "..."
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// RunCompletedMsg indicates that the whole run has finished executing.
type RunCompletedMsg struct {
	Result *runmanager.RunResult
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.EnableMouseCellMotion,
	)
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.mutex.Unlock()

		return m, cmd

	case ProgressEventMsg:
		progressCmd := m.processProgressEvent(msg.Event)
		return m, tea.Batch(cmd, progressCmd)

	case RunCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.result = msg.Result
		m.mutex.Unlock()

		return m, nil

	case tea.QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// handleKeyPress processes keyboard input not consumed by the viewport.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "r":
		// Refresh view
		return m, nil
	}

	return m, nil
}

// updateViewportSize resizes the viewport to fit the current terminal,
// reserving rows for the title, status bar and help text.
func (m *Model) updateViewportSize() {
	const reservedLines = 7

	w := m.width - 2 // border
	if w < minViewportWidth {
		w = minViewportWidth
	}

	h := m.height - reservedLines
	if h < 1 {
		h = 1
	}

	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}

	m.bar.Width = progressBarWidth
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var content strings.Builder

	m.renderTree(&content, m.rootNode, "", true)

	if m.completed {
		content.WriteString("\n")

		if m.result != nil && !m.result.Succeeded() {
			content.WriteString(m.styles.Failed.Render("✗ Run completed with errors"))
		} else {
			content.WriteString(m.styles.Success.Render("✓ Run completed successfully"))
		}

		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("radrun"))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))

	if m.height > minStatusBarAvailableHeight {
		view.WriteString("\n\n")
		view.WriteString(m.renderStatusBar())
		view.WriteString("\n")

		helpText := "↑/↓ or j/k to scroll, PgUp/PgDn for pages, 'q' to quit, 'r' to refresh"
		if m.completed {
			helpText = "↑/↓ or j/k to scroll, 'q' to quit and return to terminal"
		}

		view.WriteString(m.styles.Help.Render(helpText))
	}

	return view.String()
}

// renderStatusBar summarises node states in one line.
func (m *Model) renderStatusBar() string {
	var pending, running, succeeded, failed int

	for _, node := range m.nodeMap {
		status, _, _, _, _, _, _ := node.displayInfo()

		switch status {
		case StatusPending:
			pending++
		case StatusRunning:
			running++
		case StatusSuccess:
			succeeded++
		case StatusFailed:
			failed++
		}
	}

	return m.styles.Help.Render(fmt.Sprintf(
		"running: %d | succeeded: %d | failed: %d | pending: %d",
		running, succeeded, failed, pending,
	))
}

// renderTree recursively renders the execution tree.
func (m *Model) renderTree(b *strings.Builder, node *TreeNode, prefix string, isLast bool) {
	if node == nil {
		return
	}

	// The root node itself is not rendered.
	if len(node.Path) == 0 {
		for i, child := range node.Children {
			m.renderTree(b, child, "", i == len(node.Children)-1)
		}

		return
	}

	m.renderNode(b, node, prefix, isLast)

	if len(node.Children) > 0 {
		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}

		for i, child := range node.Children {
			m.renderTree(b, child, childPrefix, i == len(node.Children)-1)
		}
	}
}

// renderNode renders a single tree node with inline progress display.
func (m *Model) renderNode(b *strings.Builder, node *TreeNode, prefix string, isLast bool) {
	status, name, percent, message, errorMsg, startTime, endTime := node.displayInfo()

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	var statusIcon, styledName string

	switch status {
	case StatusPending:
		statusIcon = "⏳"
		styledName = m.styles.Pending.Render(name)
	case StatusRunning:
		statusIcon = "⚡"
		styledName = m.styles.Running.Render(name)
	case StatusSuccess:
		statusIcon = "✅"
		styledName = m.styles.Success.Render(name)
	case StatusFailed:
		statusIcon = "❌"
		styledName = m.styles.Failed.Render(name)
	default:
		statusIcon = "❓"
		styledName = m.styles.Pending.Render(name)
	}

	treePrefix := m.styles.TreeBranch.Render(prefix + connector)
	leftSide := fmt.Sprintf("%s %s", statusIcon, styledName)

	if startTime != nil {
		elapsed := time.Since(*startTime)
		if endTime != nil {
			elapsed = endTime.Sub(*startTime)
		}

		leftSide += m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(durationRounding)))
	}

	var rightSide string

	switch {
	case errorMsg != "" && status == StatusFailed:
		rightSide = m.styles.Error.Render(fmt.Sprintf("Error: %s", errorMsg))
	case status == StatusRunning && percent >= 0:
		// A task with a size hint gets a bar from its output file estimate.
		rightSide = m.bar.ViewAs(percent / 100)
	case status == StatusRunning && message != "":
		rightSide = m.styles.Output.Render(message)
	}

	b.WriteString(treePrefix)
	b.WriteString(leftSide)

	if rightSide != "" {
		b.WriteString("  ")
		b.WriteString(rightSide)
	}

	b.WriteString("\n")
}
