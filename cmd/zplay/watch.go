// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scetiner/zustand-playground-sub000/internal/playground"
	"github.com/scetiner/zustand-playground-sub000/internal/util"
)

// runWatch re-runs a snippet file on every save until interrupted. The
// watcher is added on the parent directory, not the file itself: editors
// that save via rename (vim, VS Code atomic writes) would otherwise
// silently detach the watch.
func runWatch(engine *playground.Engine, path string, config util.Config) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)

	sess := &session{engine: engine}
	runWatchedFile(sess, absPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Debounce timer to avoid rapid re-runs on editors that write in bursts
	var debounceTimer *time.Timer
	debounceDelay := time.Duration(config.DebounceMs) * time.Millisecond

	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopping watch")
			sess.detach()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				runWatchedFile(sess, absPath)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

func runWatchedFile(sess *session, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("--- run %s ---\n", time.Now().Format("15:04:05"))
	sess.runSource(string(source))
}
