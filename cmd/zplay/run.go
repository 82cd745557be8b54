// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
	"github.com/scetiner/zustand-playground-sub000/internal/playground"
)

// runOneShot executes a snippet once, prints the outcome, and exits
// non-zero on a failed run. Timers scheduled by the snippet are orphaned
// when the process exits; one-shot mode shows the synchronous result only.
func runOneShot(engine *playground.Engine, source string) {
	res := engine.Run(source)
	printResult(res)
	if !res.OK {
		os.Exit(1)
	}
}

// printResult writes one run's outcome to stdout: captured logs first, in
// call order, then the classified artifact.
func printResult(res *artifact.Result) {
	for _, entry := range res.Logs {
		fmt.Println(entry.Tagged())
	}

	if !res.OK {
		fmt.Fprintf(os.Stderr, "Error: %s\n", res.Err)
		return
	}

	switch res.Kind {
	case artifact.KindStore:
		fmt.Printf("store %s\n", res.StoreName)
		printSnapshot(res.StoreName, res.Store.Snapshot())
		if actions := res.Store.Actions(); len(actions) > 0 {
			fmt.Printf("  actions: %v\n", actions)
		}
	case artifact.KindStores:
		fmt.Printf("stores (%d)\n", len(res.StoreOrder))
		for _, name := range res.StoreOrder {
			printSnapshot(name, res.Stores[name].Snapshot())
		}
	case artifact.KindComponent:
		out, err := res.Component.Render()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("component %s\n", res.Component.Name())
		fmt.Println(out)
	default:
		fmt.Println("no store or component defined")
	}
}

// printSnapshot renders one store's data fields as indented JSON.
func printSnapshot(name string, snap map[string]interface{}) {
	data, err := json.MarshalIndent(snap, "  ", "  ")
	if err != nil {
		fmt.Printf("  %s: %v\n", name, snap)
		return
	}
	fmt.Printf("  %s: %s\n", name, data)
}

// session holds the live artifact between runs so asynchronous state
// changes (timers in the snippet) are printed as they land. Shared by the
// REPL and watch mode.
type session struct {
	engine *playground.Engine

	mu     sync.Mutex
	result *artifact.Result
	unsubs []func()
}

// runSource supersedes the previous run, prints the new outcome, and
// re-subscribes to the new artifact's stores.
func (s *session) runSource(source string) *artifact.Result {
	// Unsubscribe from the superseded run before its handles go inert.
	s.detach()

	res := s.engine.Run(source)
	printResult(res)

	s.mu.Lock()
	s.result = res
	s.mu.Unlock()
	s.attach(res)
	return res
}

// current returns the latest run's result, nil before the first run.
func (s *session) current() *artifact.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *session) attach(res *artifact.Result) {
	if !res.OK {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch res.Kind {
	case artifact.KindStore:
		name := res.StoreName
		s.unsubs = append(s.unsubs, res.Store.Subscribe(func(next, prev map[string]interface{}) {
			printSnapshot(name, next)
		}))
	case artifact.KindStores:
		for _, name := range res.StoreOrder {
			boundName := name
			s.unsubs = append(s.unsubs, res.Stores[name].Subscribe(func(next, prev map[string]interface{}) {
				printSnapshot(boundName, next)
			}))
		}
	}
}

func (s *session) detach() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
