// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/scetiner/zustand-playground-sub000/internal/storage"
	"github.com/scetiner/zustand-playground-sub000/internal/store"
)

// newTestRuntime wires create plus the three wrappers into a fresh
// runtime, the same surface a snippet sees. Single-goroutine, so no run
// loop is needed.
func newTestRuntime(t *testing.T, stor storage.Storage, logger *slog.Logger) (*goja.Runtime, *store.Registry) {
	t.Helper()
	vm := goja.New()
	reg := store.NewRegistry()
	bind := func(name string, v interface{}) {
		if err := vm.Set(name, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	bind("create", store.MakeCreate(vm, reg))
	bind("persist", MakePersist(vm, stor))
	bind("devtools", MakeDevtools(vm, logger))
	bind("immer", MakeImmer(vm))
	return vm, reg
}

func runStore(t *testing.T, vm *goja.Runtime, reg *store.Registry, script string) *store.Store {
	t.Helper()
	v, err := vm.RunString(script)
	if err != nil {
		t.Fatalf("construction script: %v", err)
	}
	s, ok := reg.Lookup(v)
	if !ok {
		t.Fatal("script did not produce a registered container")
	}
	return s
}

const themeInit = `create(persist((set) => ({
  mode: 'light',
  toggle: () => set((state) => ({ mode: state.mode === 'light' ? 'dark' : 'light' })),
}), { name: 'theme-pref', version: 1 }))`

// TestPersistHydratesMatchingVersion tests that a stored record with the
// declared version wins over the initializer's data fields while actions
// survive.
func TestPersistHydratesMatchingVersion(t *testing.T) {
	stor := storage.NewMemory()
	stor.SetItem("theme-pref", `{"state":{"mode":"dark"},"version":1}`)
	vm, reg := newTestRuntime(t, stor, nil)

	s := runStore(t, vm, reg, themeInit)
	if got := s.Export()["mode"]; got != "dark" {
		t.Errorf("mode = %v, want dark from stored record", got)
	}
	if err := s.CallAction("toggle"); err != nil {
		t.Errorf("action lost after hydration: %v", err)
	}
}

// TestPersistDiscardsVersionMismatch tests that a stored record under a
// different version is ignored and the initializer's state stands.
func TestPersistDiscardsVersionMismatch(t *testing.T) {
	stor := storage.NewMemory()
	stor.SetItem("theme-pref", `{"state":{"mode":"dark"},"version":0}`)
	vm, reg := newTestRuntime(t, stor, nil)

	s := runStore(t, vm, reg, themeInit)
	if got := s.Export()["mode"]; got != "light" {
		t.Errorf("mode = %v, want light after mismatch discard", got)
	}
}

// TestPersistWritesOnChange tests that every change lands back in storage
// as a {state, version} record without function fields.
func TestPersistWritesOnChange(t *testing.T) {
	stor := storage.NewMemory()
	vm, reg := newTestRuntime(t, stor, nil)

	s := runStore(t, vm, reg, themeInit)
	if err := s.CallAction("toggle"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	raw, found := stor.GetItem("theme-pref")
	if !found {
		t.Fatal("no record written after change")
	}
	var rec struct {
		State   map[string]interface{} `json:"state"`
		Version int                    `json:"version"`
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("record not valid JSON: %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("version = %d, want 1", rec.Version)
	}
	if rec.State["mode"] != "dark" {
		t.Errorf("persisted mode = %v, want dark", rec.State["mode"])
	}
	if _, has := rec.State["toggle"]; has {
		t.Errorf("function field serialized: %v", rec.State)
	}
}

// TestPersistRequiresName tests that options without a name reject the
// construction.
func TestPersistRequiresName(t *testing.T) {
	vm, _ := newTestRuntime(t, storage.NewMemory(), nil)

	if _, err := vm.RunString(`create(persist((set) => ({ n: 0 }), {}))`); err == nil {
		t.Error("expected error for nameless persist options")
	}
	if _, err := vm.RunString(`create(persist((set) => ({ n: 0 })))`); err == nil {
		t.Error("expected error for missing options")
	}
}

// TestDevtoolsLogsTransitions tests that each change is logged at debug
// level under the options name and the state itself is untouched.
func TestDevtoolsLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	vm, reg := newTestRuntime(t, storage.NewMemory(), logger)

	s := runStore(t, vm, reg, `create(devtools((set) => ({
  count: 0,
  increment: () => set((state) => ({ count: state.count + 1 })),
}), { name: 'counter' }))`)

	if err := s.CallAction("increment"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got := s.Export()["count"]; got != int64(1) {
		t.Errorf("count = %v, want 1", got)
	}

	out := buf.String()
	if !strings.Contains(out, "state transition") {
		t.Errorf("no transition logged: %q", out)
	}
	if !strings.Contains(out, "counter") {
		t.Errorf("log missing store name: %q", out)
	}
}

// TestImmerDraftRecipe tests that a function recipe mutates a draft and
// the mutation becomes the next state.
func TestImmerDraftRecipe(t *testing.T) {
	vm, reg := newTestRuntime(t, storage.NewMemory(), nil)

	s := runStore(t, vm, reg, `create(immer((set) => ({
  todos: [],
  add: () => set((draft) => { draft.todos.push('milk'); }),
})))`)

	if err := s.CallAction("add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	todos, ok := s.Export()["todos"].([]interface{})
	if !ok || len(todos) != 1 || todos[0] != "milk" {
		t.Errorf("todos = %v, want [milk]", s.Export()["todos"])
	}
	if err := s.CallAction("add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if todos, _ := s.Export()["todos"].([]interface{}); len(todos) != 2 {
		t.Errorf("todos after second add = %v", s.Export()["todos"])
	}
}

// TestImmerPlainPartial tests that non-function partials keep ordinary
// merge semantics through the wrapper.
func TestImmerPlainPartial(t *testing.T) {
	vm, reg := newTestRuntime(t, storage.NewMemory(), nil)

	s := runStore(t, vm, reg, `create(immer((set) => ({
  todos: ['eggs'],
  filter: 'all',
  showDone: () => set({ filter: 'done' }),
})))`)

	if err := s.CallAction("showDone"); err != nil {
		t.Fatalf("showDone: %v", err)
	}
	snap := s.Export()
	if snap["filter"] != "done" {
		t.Errorf("filter = %v, want done", snap["filter"])
	}
	if todos, _ := snap["todos"].([]interface{}); len(todos) != 1 {
		t.Errorf("merge dropped untouched field: %v", snap)
	}
}
