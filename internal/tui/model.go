// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/daylight-tools/radrun/internal/progress"
	"github.com/daylight-tools/radrun/internal/runmanager"
)

// NodeStatus represents the current state of a tree node in the TUI.
type NodeStatus int

const (
	StatusPending NodeStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
)

// String returns a string representation of the node status.
func (s NodeStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TreeNode represents a run, group, pipeline or task in the execution tree.
type TreeNode struct {
	Path      []string    // Hierarchical path to this node
	Name      string      // Display name
	Status    NodeStatus  // Current execution status
	StartTime *time.Time  // When execution started
	EndTime   *time.Time  // When execution completed
	Percent   float64     // Task completion estimate; negative when unknown
	Message   string      // Last progress message
	ErrorMsg  string      // Error message if failed
	Children  []*TreeNode // Child nodes
	mutex     sync.RWMutex
}

// NewTreeNode creates a new tree node.
func NewTreeNode(path []string, name string) *TreeNode {
	pathCopy := make([]string, len(path))
	copy(pathCopy, path)

	return &TreeNode{
		Path:     pathCopy,
		Name:     name,
		Status:   StatusPending,
		Percent:  -1,
		Children: make([]*TreeNode, 0),
	}
}

// UpdateStatus safely updates the node status.
func (n *TreeNode) UpdateStatus(status NodeStatus) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.Status = status
	now := time.Now()

	switch status {
	case StatusRunning:
		if n.StartTime == nil {
			n.StartTime = &now
		}
	case StatusSuccess, StatusFailed:
		if n.EndTime == nil {
			n.EndTime = &now
		}
	}
}

// UpdateProgress safely updates the completion estimate and message.
func (n *TreeNode) UpdateProgress(percent float64, message string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.Percent = percent

	if message != "" {
		n.Message = strings.TrimSpace(message)
	}
}

// UpdateError safely updates the error message.
func (n *TreeNode) UpdateError(err string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.ErrorMsg = err
}

// displayInfo safely retrieves everything the renderer needs.
func (n *TreeNode) displayInfo() (NodeStatus, string, float64, string, string, *time.Time, *time.Time) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	return n.Status, n.Name, n.Percent, n.Message, n.ErrorMsg, n.StartTime, n.EndTime
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	rootNode  *TreeNode
	nodeMap   map[string]*TreeNode
	viewport  viewport.Model
	bar       progressbar.Model
	width     int
	height    int
	ready     bool
	quitting  bool
	completed bool
	result    *runmanager.RunResult
	mutex     sync.RWMutex

	styles *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title      lipgloss.Style
	Pending    lipgloss.Style
	Running    lipgloss.Style
	Success    lipgloss.Style
	Failed     lipgloss.Style
	Output     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
	TreeBranch lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
		TreeBranch: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context) *Model {
	return &Model{
		ctx:      ctx,
		rootNode: NewTreeNode([]string{}, "Root"),
		nodeMap:  make(map[string]*TreeNode),
		bar:      progressbar.New(progressbar.WithDefaultGradient()),
		styles:   NewStyles(),
	}
}

// pathToString converts a node path to a string key.
func pathToString(path []string) string {
	return strings.Join(path, "/")
}

// getOrCreateNode safely gets or creates a node, ensuring the full hierarchy
// above it exists.
func (m *Model) getOrCreateNode(path []string, name string) *TreeNode {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	pathKey := pathToString(path)
	if node, exists := m.nodeMap[pathKey]; exists {
		return node
	}

	m.ensureParentNodes(path)

	node := NewTreeNode(path, name)
	m.nodeMap[pathKey] = node

	if len(path) > 1 {
		parentKey := pathToString(path[:len(path)-1])
		if parent, exists := m.nodeMap[parentKey]; exists {
			parent.Children = append(parent.Children, node)
		}
	} else if len(path) == 1 {
		m.rootNode.Children = append(m.rootNode.Children, node)
	}

	return node
}

// ensureParentNodes recursively creates all parent nodes if they don't exist.
func (m *Model) ensureParentNodes(path []string) {
	if len(path) <= 1 {
		return
	}

	for i := 1; i < len(path); i++ {
		parentPath := path[:i]
		parentKey := pathToString(parentPath)

		if _, exists := m.nodeMap[parentKey]; exists {
			continue
		}

		parentNode := NewTreeNode(parentPath, parentPath[len(parentPath)-1])
		m.nodeMap[parentKey] = parentNode

		if len(parentPath) > 1 {
			grandParentKey := pathToString(parentPath[:len(parentPath)-1])
			if grandParent, exists := m.nodeMap[grandParentKey]; exists {
				grandParent.Children = append(grandParent.Children, parentNode)
			}
		} else {
			m.rootNode.Children = append(m.rootNode.Children, parentNode)
		}
	}
}

// processProgressEvent handles incoming progress events.
func (m *Model) processProgressEvent(event progress.Event) tea.Cmd {
	name := "Unknown"
	if len(event.Path) > 0 {
		name = event.Path[len(event.Path)-1]
	}

	switch event.Type {
	case progress.EventRunStarted, progress.EventGroupStarted, progress.EventTaskStarted:
		node := m.getOrCreateNode(event.Path, name)
		node.UpdateStatus(StatusRunning)

	case progress.EventTaskProgress:
		node := m.getOrCreateNode(event.Path, name)
		node.UpdateProgress(event.Percent, event.Message)

	case progress.EventRunFinished:
		node := m.getOrCreateNode(event.Path, name)
		if event.Err != nil {
			node.UpdateStatus(StatusFailed)
		} else {
			node.UpdateStatus(StatusSuccess)
		}

	case progress.EventGroupFinished, progress.EventTaskFinished:
		node := m.getOrCreateNode(event.Path, name)
		node.UpdateStatus(StatusSuccess)
		node.UpdateProgress(100, event.Message)

	case progress.EventGroupFailed, progress.EventTaskFailed:
		node := m.getOrCreateNode(event.Path, name)
		node.UpdateStatus(StatusFailed)

		if event.Err != nil {
			node.UpdateError(event.Err.Error())
		}
	}

	return nil
}
