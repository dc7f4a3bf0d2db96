// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/plumb/internal/progress"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
)

// StageStatus is the display state of a node.
type StageStatus int

const (
	StatusPending StageStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusSkipped
)

// String returns a string representation of the status.
func (s StageStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Node is a pipeline or stage in the display tree.
type Node struct {
	Path       []string
	Name       string
	Status     StageStatus
	StartTime  time.Time
	EndTime    time.Time
	LastOutput string
	ErrorMsg   string
	Children   []*Node
}

func (n *Node) apply(e progress.Event) {
	switch e.Type {
	case progress.EventStarted:
		n.Status = StatusRunning
		n.StartTime = e.Timestamp
	case progress.EventOutput:
		n.LastOutput = e.Data.OutputLine
	case progress.EventCompleted:
		n.Status = StatusSuccess
		n.EndTime = e.Timestamp
	case progress.EventFailed:
		n.Status = StatusFailed
		n.EndTime = e.Timestamp

		if e.Data.Error != nil {
			n.ErrorMsg = firstLine(e.Data.Error.Error())
		}
	case progress.EventSkipped:
		n.Status = StatusSkipped
	}
}

// Elapsed returns how long the node has run, zero if it never started.
func (n *Node) Elapsed(now time.Time) time.Duration {
	if n.StartTime.IsZero() {
		return 0
	}

	if !n.EndTime.IsZero() {
		return n.EndTime.Sub(n.StartTime)
	}

	return now.Sub(n.StartTime)
}

// Model is the bubbletea model of the pipeline view.
type Model struct {
	title     string
	root      *Node
	nodes     map[string]*Node
	spinner   spinner.Model
	viewport  viewport.Model
	ready     bool
	width     int
	height    int
	quitting  bool
	completed bool
	results   runbatch.Results
	styles    *Styles
	now       func() time.Time
}

// Styles holds the lipgloss styles of the view.
type Styles struct {
	Title      lipgloss.Style
	Pending    lipgloss.Style
	Running    lipgloss.Style
	Success    lipgloss.Style
	Failed     lipgloss.Style
	Skipped    lipgloss.Style
	Output     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
	TreeBranch lipgloss.Style
}

// NewStyles creates the default styles.
func NewStyles() *Styles {
	return &Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Pending:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Running:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Failed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Skipped:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Output:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Italic(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		TreeBranch: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// NewModel creates a model for the pipeline called title.
func NewModel(title string) *Model {
	return &Model{
		title:   title,
		root:    &Node{},
		nodes:   make(map[string]*Node),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:  NewStyles(),
		now:     time.Now,
	}
}

// Completed reports whether the pipeline has finished.
func (m *Model) Completed() bool {
	return m.completed
}

// Node returns the node at path, if an event has created it.
func (m *Model) Node(path ...string) (*Node, bool) {
	n, ok := m.nodes[strings.Join(path, "\x00")]
	return n, ok
}

// node returns the node at path, creating it and its parents in event order.
func (m *Model) node(path []string) *Node {
	key := strings.Join(path, "\x00")
	if n, ok := m.nodes[key]; ok {
		return n
	}

	parent := m.root
	if len(path) > 1 {
		parent = m.node(path[:len(path)-1])
	}

	n := &Node{
		Path: append([]string(nil), path...),
		Name: path[len(path)-1],
	}
	m.nodes[key] = n
	parent.Children = append(parent.Children, n)

	return n
}

func (m *Model) handleEvent(e progress.Event) {
	if len(e.Path) == 0 {
		return
	}

	m.node(e.Path).apply(e)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
