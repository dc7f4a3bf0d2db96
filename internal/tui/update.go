// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/plumb/internal/progress"
	"github.com/matt-FFFFFF/plumb/internal/runbatch"
)

const (
	durationRounding = 100 * time.Millisecond
	reservedLines    = 4 // title, blank, status and help
	ellipsis         = "…"
)

// EventMsg wraps a progress event for the bubbletea loop.
type EventMsg struct {
	Event progress.Event
}

// CompletedMsg is sent once the pipeline has returned.
type CompletedMsg struct {
	Results runbatch.Results
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		h := max(msg.Height-reservedLines, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}

		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case CompletedMsg:
		m.completed = true
		m.results = msg.Results

		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var content strings.Builder

	for i, child := range m.root.Children {
		m.renderTree(&content, child, "", i == len(m.root.Children)-1)
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("plumb: " + m.title))
	view.WriteString("\n\n")

	if m.ready {
		m.viewport.SetContent(content.String())
		view.WriteString(m.viewport.View())
		view.WriteString("\n")
	} else {
		view.WriteString(content.String())
	}

	switch {
	case m.completed && m.results.HasError():
		view.WriteString(m.styles.Failed.Render("pipeline failed"))
	case m.completed:
		view.WriteString(m.styles.Success.Render("pipeline completed"))
	case m.quitting:
		view.WriteString(m.styles.Skipped.Render("cancelling..."))
	default:
		view.WriteString(m.styles.Help.Render("↑/↓ to scroll, q to cancel"))
	}

	view.WriteString("\n")

	return view.String()
}

func (m *Model) renderTree(b *strings.Builder, n *Node, prefix string, isLast bool) {
	m.renderNode(b, n, prefix, isLast)

	childPrefix := prefix + "│   "
	if isLast {
		childPrefix = prefix + "    "
	}

	for i, child := range n.Children {
		m.renderTree(b, child, childPrefix, i == len(n.Children)-1)
	}
}

func (m *Model) renderNode(b *strings.Builder, n *Node, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}

	var icon, name string

	switch n.Status {
	case StatusRunning:
		icon = m.spinner.View()
		name = m.styles.Running.Render(n.Name)
	case StatusSuccess:
		icon = m.styles.Success.Render("✓")
		name = m.styles.Success.Render(n.Name)
	case StatusFailed:
		icon = m.styles.Failed.Render("✗")
		name = m.styles.Failed.Render(n.Name)
	case StatusSkipped:
		icon = m.styles.Skipped.Render("~")
		name = m.styles.Skipped.Render(n.Name)
	default:
		icon = m.styles.Pending.Render("·")
		name = m.styles.Pending.Render(n.Name)
	}

	left := fmt.Sprintf("%s%s %s", m.styles.TreeBranch.Render(prefix+connector), icon, name)

	if d := n.Elapsed(m.now()); d > 0 {
		left += m.styles.Output.Render(fmt.Sprintf(" (%v)", d.Round(durationRounding)))
	}

	var right string

	switch {
	case n.Status == StatusFailed && n.ErrorMsg != "":
		right = "Error: " + n.ErrorMsg
	case n.LastOutput != "":
		right = n.LastOutput
	}

	b.WriteString(left)

	if right != "" {
		if m.width > 0 {
			right = truncate(right, m.width-lipgloss.Width(left)-2)
		}

		style := m.styles.Output
		if n.Status == StatusFailed {
			style = m.styles.Error
		}

		if right != "" {
			b.WriteString("  ")
			b.WriteString(style.Render(right))
		}
	}

	b.WriteString("\n")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)

	switch {
	case n <= 0:
		return ""
	case len(r) <= n:
		return s
	case n == 1:
		return ellipsis
	default:
		return string(r[:n-1]) + ellipsis
	}
}
