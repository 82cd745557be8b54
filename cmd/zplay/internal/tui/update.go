// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package tui

// Core update loop and message handling.

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
)

// Update handles all TUI events and messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil

	case runDoneMsg:
		return m.handleRunDone(msg)

	case stateChangedMsg:
		// Ignore changes from superseded runs still queued in the channel
		if m.result != nil && m.result.OK && msg.Generation == m.result.Generation {
			m.snapshots[msg.Name] = msg.Next
			m.refreshPreview()
		}
		return m, waitForUpdateCmd(m.updates)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.detach()
		return m, tea.Quit

	case "tab":
		if m.focus == focusLessons {
			m.focus = focusPreview
		} else {
			m.focus = focusLessons
		}
		return m, nil

	case "up", "k":
		if m.focus == focusPreview {
			m.previewViewport.LineUp(1)
			return m, nil
		}
		if m.selected > 0 {
			m.selected--
			m.refreshPreview()
		}
		return m, nil

	case "down", "j":
		if m.focus == focusPreview {
			m.previewViewport.LineDown(1)
			return m, nil
		}
		if m.selected < len(m.catalog.Lessons)-1 {
			m.selected++
			m.refreshPreview()
		}
		return m, nil

	case "pgup":
		m.previewViewport.ViewUp()
		return m, nil

	case "pgdown":
		m.previewViewport.ViewDown()
		return m, nil

	case "enter", "r":
		m.running = true
		m.statusMsg = "running..."
		m.lastError = ""
		m.refreshPreview()
		return m, m.runSelectedCmd()

	case "a":
		return m.callFirstAction()

	case "c":
		m.detach()
		m.result = nil
		m.snapshots = make(map[string]map[string]interface{})
		m.order = nil
		m.rendered = ""
		m.lastError = ""
		m.statusMsg = "preview cleared"
		m.refreshPreview()
		return m, nil

	case "d":
		l := m.catalog.Lessons[m.selected]
		var err error
		if m.progress.Done(l.ID) {
			err = m.progress.Reset(l.ID)
			m.statusMsg = fmt.Sprintf("lesson %q reset", l.ID)
		} else {
			err = m.progress.MarkDone(l.ID)
			m.statusMsg = fmt.Sprintf("lesson %q complete", l.ID)
		}
		if err != nil {
			m.lastError = err.Error()
		}
		return m, nil
	}

	return m, nil
}

// callFirstAction invokes the first action of the current store, so the
// counter-style lessons can be poked without leaving the TUI.
func (m Model) callFirstAction() (tea.Model, tea.Cmd) {
	if m.result == nil || !m.result.OK || m.result.Store == nil {
		m.statusMsg = "no store to call into"
		return m, nil
	}
	actions := m.result.Store.Actions()
	if len(actions) == 0 {
		m.statusMsg = "store has no actions"
		return m, nil
	}
	if err := m.result.Store.Call(actions[0]); err != nil {
		m.lastError = err.Error()
		return m, nil
	}
	m.statusMsg = fmt.Sprintf("called %s()", actions[0])
	return m, nil
}

func (m Model) handleRunDone(msg runDoneMsg) (tea.Model, tea.Cmd) {
	// Unsubscribe from the superseded run before its handles go inert
	m.detach()

	m.running = false
	m.result = msg.Result
	m.statusMsg = ""
	m.lastError = ""

	res := msg.Result
	if !res.OK {
		// Keep the previous successful snapshots on screen under the
		// failure banner; they are exported copies, safe to display even
		// though their run is gone. 'c' clears them explicitly.
		m.lastError = res.Err
		m.refreshPreview()
		return m, nil
	}

	m.snapshots = make(map[string]map[string]interface{})
	m.order = nil
	m.rendered = ""

	switch res.Kind {
	case artifact.KindStore:
		m.order = []string{res.StoreName}
		m.snapshots[res.StoreName] = res.Store.Snapshot()
		m.subscribe(res.StoreName, res)
	case artifact.KindStores:
		m.order = append(m.order, res.StoreOrder...)
		for _, name := range res.StoreOrder {
			m.snapshots[name] = res.Stores[name].Snapshot()
			m.subscribe(name, res)
		}
	case artifact.KindComponent:
		out, err := res.Component.Render()
		if err != nil {
			m.lastError = err.Error()
		}
		m.rendered = out
	}

	m.refreshPreview()
	return m, nil
}

// subscribe forwards one store's changes into the updates channel. The
// callback runs on the sandbox run loop; a full channel drops the message
// rather than stall script execution, and the next change carries the
// complete snapshot anyway.
func (m *Model) subscribe(name string, res *artifact.Result) {
	handle := res.Store
	if res.IsMulti() {
		handle = res.Stores[name]
	}
	gen := res.Generation
	boundName := name
	unsub := handle.Subscribe(func(next, prev map[string]interface{}) {
		select {
		case m.updates <- stateChangedMsg{Generation: gen, Name: boundName, Next: next}:
		default:
		}
	})
	m.unsubs = append(m.unsubs, unsub)
}

func (m *Model) detach() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}
