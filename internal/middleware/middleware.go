// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package middleware provides the wrapper functions lesson snippets apply
// to store initializers before they reach create(): persistence to the
// storage handle, dev-inspection logging, and mutation ergonomics. The
// sandbox passes these through opaquely; the store never knows it was
// wrapped.
package middleware

import (
	"encoding/json"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/scetiner/zustand-playground-sub000/internal/storage"
	"github.com/scetiner/zustand-playground-sub000/internal/store"
)

// persistedRecord is the on-storage shape: one externally-keyed record per
// persisted exercise. The shape is convention between this wrapper and the
// lesson author, not validated by the core.
type persistedRecord struct {
	State   map[string]interface{} `json:"state"`
	Version int                    `json:"version"`
}

// MakePersist builds the persist(initializer, options) host function.
// Options: { name: string, version?: number }. The wrapped initializer
// hydrates previously persisted state over the initial state and writes
// the {state, version} record back on every change. Function-valued state
// fields are never serialized.
func MakePersist(vm *goja.Runtime, stor storage.Storage) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.ToValue("persist() requires an initializer and an options object"))
		}
		initFn, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			panic(vm.ToValue("persist() first argument must be an initializer function"))
		}
		opts := call.Arguments[1].ToObject(vm)
		name := opts.Get("name")
		if name == nil || goja.IsUndefined(name) || name.String() == "" {
			panic(vm.ToValue("persist() options require a name"))
		}
		key := name.String()
		version := 0
		if v := opts.Get("version"); v != nil && !goja.IsUndefined(v) {
			version = int(v.ToInteger())
		}

		return vm.ToValue(func(inner goja.FunctionCall) goja.Value {
			set := argOrUndefined(inner, 0)
			get := argOrUndefined(inner, 1)
			api := argOrUndefined(inner, 2)

			initial, err := initFn(goja.Undefined(), set, get, api)
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}
			state, ok := initial.(*goja.Object)
			if !ok {
				return initial
			}

			// Hydrate: persisted data fields win over initial values;
			// actions stay from the initializer. A version mismatch
			// discards the stored record.
			if raw, found := stor.GetItem(key); found {
				var rec persistedRecord
				if jsonErr := json.Unmarshal([]byte(raw), &rec); jsonErr == nil && rec.Version == version {
					for k, v := range rec.State {
						_ = state.Set(k, vm.ToValue(v))
					}
				}
			}

			// Re-persist after every change, whichever set path caused it.
			subscribeStore(vm, api, func(next *goja.Object) {
				rec := persistedRecord{State: store.ExportData(next), Version: version}
				data, jsonErr := json.Marshal(rec)
				if jsonErr != nil {
					return
				}
				stor.SetItem(key, string(data))
			})

			return state
		})
	}
}

// MakeDevtools builds the devtools(initializer, options?) host function.
// Each state transition is logged through the playground logger at debug
// level, tagged with the options name when given.
func MakeDevtools(vm *goja.Runtime, logger *slog.Logger) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.ToValue("devtools() requires an initializer function"))
		}
		initFn, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			panic(vm.ToValue("devtools() first argument must be an initializer function"))
		}
		label := "store"
		if len(call.Arguments) > 1 {
			opts := call.Arguments[1].ToObject(vm)
			if v := opts.Get("name"); v != nil && !goja.IsUndefined(v) {
				label = v.String()
			}
		}

		return vm.ToValue(func(inner goja.FunctionCall) goja.Value {
			set := argOrUndefined(inner, 0)
			get := argOrUndefined(inner, 1)
			api := argOrUndefined(inner, 2)

			initial, err := initFn(goja.Undefined(), set, get, api)
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}

			subscribeStore(vm, api, func(next *goja.Object) {
				if logger == nil {
					return
				}
				data, jsonErr := json.Marshal(store.ExportData(next))
				if jsonErr != nil {
					return
				}
				logger.Debug("state transition", "store", label, "state", string(data))
			})

			return initial
		})
	}
}

// MakeImmer builds the immer(initializer) host function. The inner
// initializer receives a set whose function partials get a draft copy of
// the current state; mutations on the draft become the next state.
func MakeImmer(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.ToValue("immer() requires an initializer function"))
		}
		initFn, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			panic(vm.ToValue("immer() first argument must be an initializer function"))
		}

		return vm.ToValue(func(inner goja.FunctionCall) goja.Value {
			set := argOrUndefined(inner, 0)
			get := argOrUndefined(inner, 1)
			api := argOrUndefined(inner, 2)

			setFn, setOk := goja.AssertFunction(set)
			getFn, getOk := goja.AssertFunction(get)
			if !setOk || !getOk {
				panic(vm.ToValue("immer() must wrap a store initializer"))
			}

			draftSet := vm.ToValue(func(call goja.FunctionCall) goja.Value {
				if len(call.Arguments) == 0 {
					return goja.Undefined()
				}
				recipe, isFn := goja.AssertFunction(call.Arguments[0])
				if !isFn {
					// Plain partials keep ordinary merge semantics.
					if _, err := setFn(goja.Undefined(), call.Arguments...); err != nil {
						panic(vm.ToValue(err.Error()))
					}
					return goja.Undefined()
				}

				current, err := getFn(goja.Undefined())
				if err != nil {
					panic(vm.ToValue(err.Error()))
				}
				draft := cloneState(vm, current.ToObject(vm))
				if _, err := recipe(goja.Undefined(), draft); err != nil {
					panic(vm.ToValue(err.Error()))
				}
				// Replace with the mutated draft; the draft started as a
				// full copy so nothing is lost.
				if _, err := setFn(goja.Undefined(), draft, vm.ToValue(true)); err != nil {
					panic(vm.ToValue(err.Error()))
				}
				return goja.Undefined()
			})

			initial, err := initFn(goja.Undefined(), draftSet, get, api)
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}
			return initial
		})
	}
}

// subscribeStore attaches a Go callback to an api object's subscribe
// operation. Middleware only ever sees the api opaquely, so this goes
// through the same subscribe the script would use.
func subscribeStore(vm *goja.Runtime, api goja.Value, fn func(next *goja.Object)) {
	apiObj, ok := api.(*goja.Object)
	if !ok {
		return
	}
	subscribe, ok := goja.AssertFunction(apiObj.Get("subscribe"))
	if !ok {
		return
	}
	listener := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			if next, ok := call.Arguments[0].(*goja.Object); ok {
				fn(next)
			}
		}
		return goja.Undefined()
	})
	_, _ = subscribe(goja.Undefined(), listener)
}

// cloneState makes a working copy of a state object: function fields by
// reference, data fields deep-copied through an export/import round trip.
func cloneState(vm *goja.Runtime, state *goja.Object) *goja.Object {
	draft := vm.NewObject()
	for _, k := range state.Keys() {
		v := state.Get(k)
		if v == nil {
			continue
		}
		if _, isFn := goja.AssertFunction(v); isFn {
			_ = draft.Set(k, v)
			continue
		}
		_ = draft.Set(k, vm.ToValue(v.Export()))
	}
	return draft
}

func argOrUndefined(call goja.FunctionCall, i int) goja.Value {
	if i < len(call.Arguments) {
		return call.Arguments[i]
	}
	return goja.Undefined()
}
