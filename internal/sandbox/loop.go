// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package sandbox

import (
	"sync"
)

// Loop serializes all access to one sandbox's goja runtime on a single
// goroutine: script execution, timer callbacks, and Go-side store
// operations all go through here. goja runtimes are not goroutine-safe.
type Loop struct {
	jobs chan func()
	quit chan struct{}
	once sync.Once
}

// NewLoop starts the run goroutine.
func NewLoop() *Loop {
	l := &Loop{
		jobs: make(chan func(), 64),
		quit: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case <-l.quit:
			return
		case job := <-l.jobs:
			job()
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. Returns
// false without running fn if the loop is closed.
func (l *Loop) Do(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case l.jobs <- wrapped:
	case <-l.quit:
		return false
	}
	select {
	case <-done:
		return true
	case <-l.quit:
		return false
	}
}

// Post queues fn without waiting. Returns false and drops the job when
// the loop is closed (how a superseded run's timer callbacks become
// orphaned) or when the queue is full — a firing timer goroutine must
// never block behind a long synchronous action holding the loop, and the
// orphaned-continuation policy already tolerates dropped callbacks.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.jobs <- fn:
		return true
	default:
		return false
	}
}

// Close stops the loop. Queued and future jobs are dropped. Safe to call
// more than once and from any goroutine.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.quit)
	})
}
