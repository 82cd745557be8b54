// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package artifact classifies what a run produced. Classification is
// name-based, not type-based: the executed script has no static types
// left, and lesson starter code seeds the expected binding names, so an
// ordered lookup table over well-known names stands in for semantic
// analysis. The tables below are versioned in lockstep with the lesson
// catalog.
package artifact

import (
	"github.com/dop251/goja"

	"github.com/scetiner/zustand-playground-sub000/internal/console"
	"github.com/scetiner/zustand-playground-sub000/internal/store"
)

// PairedStoreNames are the canonical bindings of the dual-store exercise
// (two independently-owned containers created side by side). Both present
// means a multi-container result, always.
var PairedStoreNames = [2]string{"useProductsStore", "useCartStore"}

// SingleStoreNames is the ordered probe list covering every single-store
// exercise's expected binding name. The paired names sit at the end so a
// lone half of the pair still resolves as a single container.
var SingleStoreNames = []string{
	"useCounterStore",
	"useTodoStore",
	"useUserStore",
	"useThemeStore",
	"useFormStore",
	"useTimerStore",
	"useStore",
	"store",
	"useProductsStore",
	"useCartStore",
}

// ComponentNames is the ordered probe list for renderable definitions.
var ComponentNames = []string{"App", "Counter", "TodoList", "component"}

// CandidateNames returns every probe name in table order; the sandbox
// generates its binding probes from this list.
func CandidateNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	add(PairedStoreNames[0])
	add(PairedStoreNames[1])
	for _, n := range SingleStoreNames {
		add(n)
	}
	for _, n := range ComponentNames {
		add(n)
	}
	return names
}

// Kind tags the result variant.
type Kind int

const (
	// KindNone: the script ran but produced no recognized binding. A
	// valid terminal state, not an error.
	KindNone Kind = iota
	// KindStore: exactly one reactive container identified.
	KindStore
	// KindStores: the canonical paired containers identified together.
	KindStores
	// KindComponent: a renderable definition identified.
	KindComponent
)

func (k Kind) String() string {
	switch k {
	case KindStore:
		return "store"
	case KindStores:
		return "stores"
	case KindComponent:
		return "component"
	default:
		return "none"
	}
}

// Result is the uniform outcome of one run, consumed generically by the
// projection layer regardless of which exercise produced it. Constructed
// fresh per run, discarded when superseded.
type Result struct {
	Kind       Kind
	Generation uint64

	// Store is the single container, or the first of the pair as a
	// fallback for callers that only look at "the" container.
	Store     *store.Handle
	StoreName string

	// Stores holds the named containers of a multi-container result;
	// StoreOrder preserves the pair order for display.
	Stores     map[string]*store.Handle
	StoreOrder []string

	Component *Component

	Logs []console.Entry
	OK   bool
	Err  string
}

// IsMulti reports whether this is a multi-container result.
func (r *Result) IsMulti() bool {
	return r.Kind == KindStores
}

// Failure builds the failure-branch result: no artifact fields populated,
// logs recorded before the throw preserved.
func Failure(gen uint64, msg string, logs []console.Entry) *Result {
	return &Result{Kind: KindNone, Generation: gen, Logs: logs, OK: false, Err: msg}
}

// BindingSet is the resolver's view of the executed script's top-level
// bindings. Lookup must report only bindings that are defined and
// non-null.
type BindingSet interface {
	Lookup(name string) (goja.Value, bool)
}

// Resolve classifies the run. Must be called on the sandbox run loop; the
// returned handles dispatch through do and are safe anywhere afterwards.
//
// Priority order, first match wins:
//  1. both paired names bound to containers -> KindStores
//  2. first single-store candidate bound to a container -> KindStore
//  3. first renderable candidate -> KindComponent
//  4. KindNone
func Resolve(bindings BindingSet, reg *store.Registry, do func(func()) bool) *Result {
	res := &Result{Kind: KindNone, OK: true}

	first, firstOK := lookupStore(bindings, reg, PairedStoreNames[0])
	second, secondOK := lookupStore(bindings, reg, PairedStoreNames[1])
	if firstOK && secondOK {
		res.Kind = KindStores
		res.Stores = map[string]*store.Handle{
			PairedStoreNames[0]: store.NewHandle(first, do),
			PairedStoreNames[1]: store.NewHandle(second, do),
		}
		res.StoreOrder = []string{PairedStoreNames[0], PairedStoreNames[1]}
		res.Store = res.Stores[PairedStoreNames[0]]
		res.StoreName = PairedStoreNames[0]
		return res
	}

	for _, name := range SingleStoreNames {
		if s, ok := lookupStore(bindings, reg, name); ok {
			res.Kind = KindStore
			res.Store = store.NewHandle(s, do)
			res.StoreName = name
			return res
		}
	}

	for _, name := range ComponentNames {
		if v, ok := bindings.Lookup(name); ok {
			if c := newComponent(name, v, do); c != nil {
				res.Kind = KindComponent
				res.Component = c
				return res
			}
		}
	}

	return res
}

// lookupStore probes one binding name and maps it back to its container.
// A name bound to something that is not a container is skipped so probing
// can continue; the lesson corpus never shadows a store name with another
// value, but a half-finished snippet might.
func lookupStore(bindings BindingSet, reg *store.Registry, name string) (*store.Store, bool) {
	v, ok := bindings.Lookup(name)
	if !ok {
		return nil, false
	}
	return reg.Lookup(v)
}
