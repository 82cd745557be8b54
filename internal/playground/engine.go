// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package playground is the public entry point of the execution core:
// normalize the snippet, run it in a fresh sandbox, classify the result.
// One engine per lesson slot; one run at a time, each run superseding the
// previous.
package playground

import (
	"log/slog"
	"sync"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
	"github.com/scetiner/zustand-playground-sub000/internal/console"
	"github.com/scetiner/zustand-playground-sub000/internal/normalize"
	"github.com/scetiner/zustand-playground-sub000/internal/sandbox"
	"github.com/scetiner/zustand-playground-sub000/internal/storage"
)

// Engine runs snippets against the fixed injected environment.
type Engine struct {
	env sandbox.Environment

	mu         sync.Mutex
	generation uint64
	current    *sandbox.Sandbox
}

// New creates an engine. The storage handle is the single shared
// resource across all runs and lessons; the engine does not namespace it.
func New(stor storage.Storage, logger *slog.Logger) *Engine {
	return &Engine{
		env: sandbox.Environment{
			Storage: stor,
			Logger:  logger,
		},
	}
}

// Generation returns the current run generation. Deferred continuations
// from older generations must be discarded by the projection layer.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// Run executes one snippet and returns the classified result. It never
// returns a raw error: a synchronous throw becomes the failure branch of
// the result, with the log entries recorded before the throw preserved.
//
// Each run closes the previous run's sandbox first, so a superseded run's
// pending timers become orphaned continuations and its handles go inert.
func (e *Engine) Run(source string) *artifact.Result {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	prev := e.current
	sb := sandbox.New(e.env)
	e.current = sb
	e.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	script := normalize.Source(source)
	outcome := sb.Execute(script)

	// Drain on the run loop: a timer callback from the snippet may be
	// recording entries concurrently, and the capture is loop-confined.
	var logs []console.Entry
	sb.Do(func() {
		logs = sb.Capture().Drain()
	})

	if outcome.Err != nil {
		return artifact.Failure(gen, outcome.Err.Error(), logs)
	}

	var res *artifact.Result
	sb.Do(func() {
		res = artifact.Resolve(outcome.Bindings, sb.Registry(), sb.Do)
	})
	if res == nil {
		// The sandbox was closed out from under us by a newer run.
		return artifact.Failure(gen, "run superseded", logs)
	}
	res.Generation = gen
	res.Logs = logs
	return res
}

// Close shuts down the current sandbox. Call when the lesson slot goes
// away.
func (e *Engine) Close() {
	e.mu.Lock()
	cur := e.current
	e.current = nil
	e.mu.Unlock()
	if cur != nil {
		cur.Close()
	}
}
