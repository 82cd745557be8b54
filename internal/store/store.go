// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package store implements the reactive state containers that lesson
// snippets create. A container holds one JS object as its state and
// notifies subscribers on every replacement. All methods in this file
// touch the goja runtime and must run on the owning sandbox's run loop;
// the cross-goroutine surface lives in handle.go.
package store

import (
	"fmt"

	"github.com/dop251/goja"
)

// Store is one reactive container.
type Store struct {
	vm    *goja.Runtime
	state *goja.Object
	api   *goja.Object

	jsSubs map[int]goja.Callable
	goSubs map[int]func(next, prev map[string]interface{})
	nextID int
}

// Registry maps the JS-visible api objects back to their stores so the
// artifact resolver can hand out Go-side handles. One registry per run.
type Registry struct {
	stores map[*goja.Object]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[*goja.Object]*Store)}
}

// Lookup resolves a JS value to the store whose api object it is.
func (r *Registry) Lookup(v goja.Value) (*Store, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	s, ok := r.stores[obj]
	return s, ok
}

// Count returns the number of stores created during the run.
func (r *Registry) Count() int {
	return len(r.stores)
}

// MakeCreate builds the create() constructor host function. Both the plain
// form create(initializer) and the curried form create()(initializer) are
// supported; the latter is what typed lesson code compiles down to after
// its type argument is stripped.
func MakeCreate(vm *goja.Runtime, reg *Registry) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || goja.IsUndefined(call.Arguments[0]) {
			// Curried: return a function waiting for the initializer.
			return vm.ToValue(func(inner goja.FunctionCall) goja.Value {
				if len(inner.Arguments) == 0 {
					panic(vm.ToValue("create()() requires an initializer function"))
				}
				return newStore(vm, reg, inner.Arguments[0])
			})
		}
		return newStore(vm, reg, call.Arguments[0])
	}
}

// newStore runs the initializer and returns the api object.
func newStore(vm *goja.Runtime, reg *Registry, initializer goja.Value) goja.Value {
	initFn, ok := goja.AssertFunction(initializer)
	if !ok {
		panic(vm.ToValue("create() requires an initializer function"))
	}

	s := &Store{
		vm:     vm,
		state:  vm.NewObject(),
		jsSubs: make(map[int]goja.Callable),
		goSubs: make(map[int]func(next, prev map[string]interface{})),
	}
	s.api = s.buildAPI()
	reg.stores[s.api] = s

	setFn := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		var partial goja.Value = goja.Undefined()
		replace := false
		if len(call.Arguments) > 0 {
			partial = call.Arguments[0]
		}
		if len(call.Arguments) > 1 {
			replace = call.Arguments[1].ToBoolean()
		}
		s.SetState(partial, replace)
		return goja.Undefined()
	})
	getFn := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return s.state
	})

	initial, err := initFn(goja.Undefined(), setFn, getFn, s.api)
	if err != nil {
		// Surface initializer failures as ordinary script exceptions.
		panic(vm.ToValue(err.Error()))
	}
	if obj, ok := initial.(*goja.Object); ok {
		s.state = obj
	}

	return s.api
}

// buildAPI constructs the object handed back to the script: getState,
// setState, subscribe, destroy.
func (s *Store) buildAPI() *goja.Object {
	api := s.vm.NewObject()

	_ = api.Set("getState", func(call goja.FunctionCall) goja.Value {
		return s.state
	})
	_ = api.Set("setState", func(call goja.FunctionCall) goja.Value {
		var partial goja.Value = goja.Undefined()
		replace := false
		if len(call.Arguments) > 0 {
			partial = call.Arguments[0]
		}
		if len(call.Arguments) > 1 {
			replace = call.Arguments[1].ToBoolean()
		}
		s.SetState(partial, replace)
		return goja.Undefined()
	})
	_ = api.Set("subscribe", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(s.vm.ToValue("subscribe() requires a listener function"))
		}
		cb, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			panic(s.vm.ToValue("subscribe() requires a listener function"))
		}
		id := s.nextID
		s.nextID++
		s.jsSubs[id] = cb
		return s.vm.ToValue(func(goja.FunctionCall) goja.Value {
			delete(s.jsSubs, id)
			return goja.Undefined()
		})
	})
	_ = api.Set("destroy", func(call goja.FunctionCall) goja.Value {
		s.jsSubs = make(map[int]goja.Callable)
		s.goSubs = make(map[int]func(next, prev map[string]interface{}))
		return goja.Undefined()
	})

	return api
}

// SetState replaces the container state. Function partials are called with
// the current state; object partials are shallow-merged unless replace is
// set. Subscribers are notified with (next, prev).
func (s *Store) SetState(partial goja.Value, replace bool) {
	prev := s.state

	patch := partial
	if fn, ok := goja.AssertFunction(partial); ok {
		result, err := fn(goja.Undefined(), prev)
		if err != nil {
			panic(s.vm.ToValue(err.Error()))
		}
		patch = result
	}

	next := s.vm.NewObject()
	if !replace {
		for _, k := range prev.Keys() {
			_ = next.Set(k, prev.Get(k))
		}
	}
	if patchObj, ok := patch.(*goja.Object); ok && !goja.IsNull(patch) && !goja.IsUndefined(patch) {
		for _, k := range patchObj.Keys() {
			_ = next.Set(k, patchObj.Get(k))
		}
	}

	s.state = next
	s.notify(next, prev)
}

// ReplaceWith installs a fully-built state object, bypassing the merge.
// Used by the mutation-ergonomics middleware after applying a draft.
func (s *Store) ReplaceWith(next *goja.Object) {
	prev := s.state
	s.state = next
	s.notify(next, prev)
}

// State returns the raw state object.
func (s *Store) State() *goja.Object {
	return s.state
}

// Runtime returns the owning goja runtime.
func (s *Store) Runtime() *goja.Runtime {
	return s.vm
}

// SubscribeGo registers a Go-side listener; it is invoked on the run loop
// with exported snapshots. Returns an unsubscribe closure (also run-loop
// confined; the handle wraps it).
func (s *Store) SubscribeGo(fn func(next, prev map[string]interface{})) func() {
	id := s.nextID
	s.nextID++
	s.goSubs[id] = fn
	return func() {
		delete(s.goSubs, id)
	}
}

// CallAction invokes a function-valued state field (a lesson "action").
func (s *Store) CallAction(name string, args ...interface{}) error {
	v := s.state.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return fmt.Errorf("no action %q on store state", name)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("state field %q is not a function", name)
	}
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = s.vm.ToValue(a)
	}
	if _, err := fn(goja.Undefined(), jsArgs...); err != nil {
		return fmt.Errorf("action %q failed: %w", name, err)
	}
	return nil
}

// Export returns the data fields of the state as plain Go values; function
// fields (actions) are skipped so snapshots compare and render cleanly.
func (s *Store) Export() map[string]interface{} {
	return ExportData(s.state)
}

// ExportData exports the non-function own properties of a JS object as
// plain Go values.
func ExportData(obj *goja.Object) map[string]interface{} {
	out := make(map[string]interface{})
	for _, k := range obj.Keys() {
		v := obj.Get(k)
		if v == nil {
			continue
		}
		if _, isFn := goja.AssertFunction(v); isFn {
			continue
		}
		out[k] = v.Export()
	}
	return out
}

// Actions returns the names of function-valued state fields.
func (s *Store) Actions() []string {
	var names []string
	for _, k := range s.state.Keys() {
		v := s.state.Get(k)
		if v == nil {
			continue
		}
		if _, isFn := goja.AssertFunction(v); isFn {
			names = append(names, k)
		}
	}
	return names
}

// notify fans a state change out to JS and Go subscribers. Go subscribers
// receive exported snapshots computed once per change.
func (s *Store) notify(next, prev *goja.Object) {
	for _, cb := range s.jsSubs {
		if _, err := cb(goja.Undefined(), next, prev); err != nil {
			// A throwing listener must not prevent other listeners from
			// running; the error surfaces nowhere else, matching the
			// fire-and-forget subscription model.
			continue
		}
	}
	if len(s.goSubs) == 0 {
		return
	}
	nextSnap := ExportData(next)
	prevSnap := ExportData(prev)
	for _, fn := range s.goSubs {
		fn(nextSnap, prevSnap)
	}
}
