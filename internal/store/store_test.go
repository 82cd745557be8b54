// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package store

import (
	"testing"

	"github.com/dop251/goja"
)

// newTestStore runs a construction script against a fresh runtime and
// returns the container it registered. Tests here are single-goroutine,
// so no run loop is needed.
func newTestStore(t *testing.T, script string) (*goja.Runtime, *Registry, *Store) {
	t.Helper()
	vm := goja.New()
	reg := NewRegistry()
	if err := vm.Set("create", MakeCreate(vm, reg)); err != nil {
		t.Fatalf("set create: %v", err)
	}
	v, err := vm.RunString(script)
	if err != nil {
		t.Fatalf("construction script: %v", err)
	}
	s, ok := reg.Lookup(v)
	if !ok {
		t.Fatal("script did not produce a registered container")
	}
	return vm, reg, s
}

const counterInit = `create((set) => ({
  count: 0,
  name: 'counter',
  increment: () => set((state) => ({ count: state.count + 1 })),
}))`

// TestSetStateMergeAndReplace tests the two set paths: object partials
// shallow-merge by default and replace wholesale when asked.
func TestSetStateMergeAndReplace(t *testing.T) {
	vm, _, s := newTestStore(t, counterInit)

	s.SetState(vm.ToValue(map[string]interface{}{"count": 2}), false)
	snap := s.Export()
	if snap["count"] != int64(2) {
		t.Errorf("count = %v, want 2", snap["count"])
	}
	if snap["name"] != "counter" {
		t.Errorf("merge dropped untouched field: %v", snap)
	}

	s.SetState(vm.ToValue(map[string]interface{}{"count": 9}), true)
	snap = s.Export()
	if snap["count"] != int64(9) {
		t.Errorf("count after replace = %v, want 9", snap["count"])
	}
	if _, still := snap["name"]; still {
		t.Errorf("replace kept old field: %v", snap)
	}
	if len(s.Actions()) != 0 {
		t.Errorf("replace kept actions: %v", s.Actions())
	}
}

// TestFunctionPartial tests that a function partial receives the current
// state and its return value is merged.
func TestFunctionPartial(t *testing.T) {
	_, _, s := newTestStore(t, counterInit)

	if err := s.CallAction("increment"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := s.CallAction("increment"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got := s.Export()["count"]; got != int64(2) {
		t.Errorf("count = %v, want 2", got)
	}
}

// TestCallActionErrors tests the unknown-action and non-function paths.
func TestCallActionErrors(t *testing.T) {
	_, _, s := newTestStore(t, counterInit)

	if err := s.CallAction("missing"); err == nil {
		t.Error("expected error for unknown action")
	}
	if err := s.CallAction("count"); err == nil {
		t.Error("expected error for non-function field")
	}
}

// TestSubscribeGo tests Go-side notification with (next, prev) snapshots
// and unsubscription.
func TestSubscribeGo(t *testing.T) {
	_, _, s := newTestStore(t, counterInit)

	var calls int
	var lastNext, lastPrev map[string]interface{}
	unsub := s.SubscribeGo(func(next, prev map[string]interface{}) {
		calls++
		lastNext, lastPrev = next, prev
	})

	if err := s.CallAction("increment"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if lastNext["count"] != int64(1) || lastPrev["count"] != int64(0) {
		t.Errorf("snapshots = next %v, prev %v", lastNext, lastPrev)
	}

	unsub()
	if err := s.CallAction("increment"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls after unsubscribe = %d, want 1", calls)
	}
}

// TestExportSkipsActions tests that snapshots carry data fields only
// while Actions lists the function fields.
func TestExportSkipsActions(t *testing.T) {
	_, _, s := newTestStore(t, counterInit)

	snap := s.Export()
	if _, has := snap["increment"]; has {
		t.Errorf("snapshot includes function field: %v", snap)
	}
	actions := s.Actions()
	if len(actions) != 1 || actions[0] != "increment" {
		t.Errorf("actions = %v", actions)
	}
}

// TestRegistryRejectsNonStores tests that Lookup only maps registered api
// objects.
func TestRegistryRejectsNonStores(t *testing.T) {
	vm, reg, _ := newTestStore(t, counterInit)

	plain, err := vm.RunString(`({ getState: () => ({}) })`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup(plain); ok {
		t.Error("plain object resolved as a container")
	}
	if _, ok := reg.Lookup(vm.ToValue(42)); ok {
		t.Error("number resolved as a container")
	}
	if reg.Count() != 1 {
		t.Errorf("registry count = %d, want 1", reg.Count())
	}
}

// TestCurriedConstruction tests the create()(initializer) form.
func TestCurriedConstruction(t *testing.T) {
	_, _, s := newTestStore(t, `create()((set) => ({ items: [] }))`)

	snap := s.Export()
	if _, has := snap["items"]; !has {
		t.Errorf("curried construction state = %v", snap)
	}
}
