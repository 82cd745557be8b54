// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package tui

// Rendering and styles.

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/scetiner/zustand-playground-sub000/internal/console"
)

const lessonPaneWidth = 30

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)

	paneActiveStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	header := titleStyle.Render("zplay — zustand playground")

	left := m.renderLessonList()
	right := m.renderPreview()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := ""
	if m.lastError != "" {
		status = errorStyle.Render("Error: " + m.lastError)
	} else if m.statusMsg != "" {
		status = statusStyle.Render(m.statusMsg)
	}

	help := helpStyle.Render("↑/↓ select · enter run · a first action · d toggle done · c clear · tab focus · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, help)
}

func (m Model) renderLessonList() string {
	var b strings.Builder
	for i, l := range m.catalog.Lessons {
		marker := "  "
		if m.progress.Done(l.ID) {
			marker = doneStyle.Render("✓ ")
		}
		line := fmt.Sprintf("%s%s", marker, l.ID)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("%d/%d complete",
		len(m.progress.Completed()), len(m.catalog.Lessons))))

	style := paneStyle
	if m.focus == focusLessons {
		style = paneActiveStyle
	}
	return style.Width(lessonPaneWidth).Height(m.bodyHeight()).Render(b.String())
}

func (m Model) renderPreview() string {
	style := paneStyle
	if m.focus == focusPreview {
		style = paneActiveStyle
	}
	width := m.width - lessonPaneWidth - 6
	if width < 20 {
		width = 20
	}

	var content string
	if m.viewportReady {
		content = m.previewViewport.View()
	} else {
		content = m.previewContent()
	}
	return style.Width(width).Height(m.bodyHeight()).Render(content)
}

func (m Model) bodyHeight() int {
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

// previewContent builds the right pane's text: lesson info, run outcome,
// live state, captured logs.
func (m Model) previewContent() string {
	var b strings.Builder

	l := m.catalog.Lessons[m.selected]
	b.WriteString(kindStyle.Render(l.Title) + "\n")
	b.WriteString(subtitleStyle.Render(strings.TrimSpace(l.Summary)) + "\n\n")

	if m.running {
		b.WriteString("running...\n")
		return b.String()
	}
	if m.result == nil {
		return b.String()
	}

	if !m.result.OK {
		b.WriteString(errorStyle.Render("run failed: "+m.result.Err) + "\n\n")
	} else {
		b.WriteString(kindStyle.Render("result: "+m.result.Kind.String()) + "\n\n")
	}

	// On failure these hold the previous successful run's snapshots,
	// which stay visible under the banner until cleared or replaced.
	for _, name := range m.order {
		b.WriteString(name + "\n")
		b.WriteString(indentJSON(m.snapshots[name]) + "\n")
	}
	if m.rendered != "" {
		b.WriteString(m.rendered + "\n")
	}

	if len(m.result.Logs) > 0 {
		b.WriteString("\n" + subtitleStyle.Render("console") + "\n")
		for _, entry := range m.result.Logs {
			line := entry.Tagged()
			switch entry.Level {
			case console.LevelError:
				line = errorStyle.Render(line)
			case console.LevelWarn:
				line = warningStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}

// refreshPreview rebuilds the viewport content after a run or a state
// change, preserving scroll position when possible.
func (m *Model) refreshPreview() {
	if !m.viewportReady {
		return
	}
	m.previewViewport.SetContent(m.previewContent())
}

func (m *Model) resizeViewport() {
	width := m.width - lessonPaneWidth - 8
	if width < 20 {
		width = 20
	}
	if !m.viewportReady {
		m.previewViewport = viewport.New(width, m.bodyHeight())
		m.viewportReady = true
	} else {
		m.previewViewport.Width = width
		m.previewViewport.Height = m.bodyHeight()
	}
	m.previewViewport.SetContent(m.previewContent())
}

func indentJSON(snap map[string]interface{}) string {
	data, err := json.MarshalIndent(snap, "  ", "  ")
	if err != nil {
		return fmt.Sprintf("  %v", snap)
	}
	return "  " + string(data)
}
