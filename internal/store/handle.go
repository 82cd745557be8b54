// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package store

// Handle is the cross-goroutine view of a container. Every operation is
// dispatched onto the owning sandbox's run loop through the do function;
// snapshots are exported copies and safe to hold anywhere.
//
// A handle outlives its run: once the run loop is closed, operations
// become no-ops and Snapshot returns the zero value. That matches the
// orphaned-continuation model — a stale handle never touches the VM of a
// superseded run.
type Handle struct {
	store *Store
	do    func(func()) bool
}

// NewHandle wraps a store with its run-loop dispatcher.
func NewHandle(s *Store, do func(func()) bool) *Handle {
	return &Handle{store: s, do: do}
}

// Snapshot returns the current data fields of the state. Nil when the
// owning run loop is gone.
func (h *Handle) Snapshot() map[string]interface{} {
	var snap map[string]interface{}
	if ok := h.do(func() {
		snap = h.store.Export()
	}); !ok {
		return nil
	}
	return snap
}

// Actions returns the action names defined on the state.
func (h *Handle) Actions() []string {
	var names []string
	h.do(func() {
		names = h.store.Actions()
	})
	return names
}

// Subscribe registers a listener invoked on every state change with
// (next, prev) snapshots. The returned closure unsubscribes; it must be
// called before subscribing to a newer run's artifact so listeners do not
// accumulate across runs.
func (h *Handle) Subscribe(fn func(next, prev map[string]interface{})) func() {
	var unsub func()
	h.do(func() {
		unsub = h.store.SubscribeGo(fn)
	})
	return func() {
		if unsub != nil {
			h.do(unsub)
		}
	}
}

// Call invokes a named action on the state, e.g. the counter lesson's
// increment.
func (h *Handle) Call(action string, args ...interface{}) error {
	var err error
	if ok := h.do(func() {
		err = h.store.CallAction(action, args...)
	}); !ok {
		return nil
	}
	return err
}

// SetState shallow-merges a partial into the state from the Go side.
func (h *Handle) SetState(partial map[string]interface{}) {
	h.do(func() {
		h.store.SetState(h.store.Runtime().ToValue(partial), false)
	})
}
