// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package tui is the full-screen lesson browser: lesson list on the left,
// live preview of the running snippet's state on the right. All snippet
// execution stays in the playground engine; the TUI only projects results.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
	"github.com/scetiner/zustand-playground-sub000/internal/lesson"
	"github.com/scetiner/zustand-playground-sub000/internal/playground"
)

// focusArea tracks which pane receives navigation keys
type focusArea int

const (
	focusLessons focusArea = iota
	focusPreview
)

// Model is the main TUI application model
type Model struct {
	engine   *playground.Engine
	catalog  *lesson.Catalog
	progress *lesson.Progress

	// Lesson list
	selected int
	focus    focusArea

	// Latest run projection. Snapshots are keyed by store name and
	// replaced wholesale on every state change message.
	result    *artifact.Result
	snapshots map[string]map[string]interface{}
	order     []string
	rendered  string
	running   bool

	// Async state changes arrive through this channel from the sandbox
	// run loop; waitForUpdateCmd feeds them back into Update.
	updates chan tea.Msg
	unsubs  []func()

	// Preview scroll
	previewViewport viewport.Model
	viewportReady   bool

	// Status bar
	statusMsg string
	lastError string

	// Screen dimensions
	width  int
	height int

	// Quit flag
	quitting bool
}

// Tea messages for async operations

// runDoneMsg is sent when a snippet run finishes
type runDoneMsg struct {
	Result *artifact.Result
}

// stateChangedMsg is sent when a subscribed store's state changes.
// Generation guards against messages from superseded runs that were
// already queued when the new run started.
type stateChangedMsg struct {
	Generation uint64
	Name       string
	Next       map[string]interface{}
}

// NewModel creates a new TUI model
func NewModel(engine *playground.Engine, catalog *lesson.Catalog, progress *lesson.Progress, lessonID string) Model {
	m := Model{
		engine:    engine,
		catalog:   catalog,
		progress:  progress,
		snapshots: make(map[string]map[string]interface{}),
		updates:   make(chan tea.Msg, 64),
	}
	if lessonID != "" {
		for i, l := range catalog.Lessons {
			if l.ID == lessonID {
				m.selected = i
				break
			}
		}
	}
	return m
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.runSelectedCmd(),
		waitForUpdateCmd(m.updates),
		tea.EnterAltScreen,
	)
}

// Run starts the TUI and blocks until the user quits.
func Run(engine *playground.Engine, catalog *lesson.Catalog, progress *lesson.Progress, lessonID string) error {
	p := tea.NewProgram(NewModel(engine, catalog, progress, lessonID))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

// runSelectedCmd runs the selected lesson's starter snippet off the
// update loop.
func (m Model) runSelectedCmd() tea.Cmd {
	l := m.catalog.Lessons[m.selected]
	engine := m.engine
	return func() tea.Msg {
		return runDoneMsg{Result: engine.Run(l.Starter)}
	}
}

// waitForUpdateCmd blocks on the updates channel and re-arms after every
// message.
func waitForUpdateCmd(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
