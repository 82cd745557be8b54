// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package lesson

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/scetiner/zustand-playground-sub000/internal/fsutil"
)

// Progress tracks which lessons have been completed. Completion is
// written to disk on every change so a crash never loses progress.
type Progress struct {
	mu        sync.Mutex
	path      string
	completed map[string]bool
}

type progressRecord struct {
	Completed []string `yaml:"completed"`
}

// LoadProgress reads the progress file. A missing file means no lessons
// are done yet and is not an error.
func LoadProgress(path string) (*Progress, error) {
	p := &Progress{
		path:      path,
		completed: make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	var rec progressRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse progress file: %w", err)
	}
	for _, id := range rec.Completed {
		p.completed[id] = true
	}
	return p, nil
}

// Done reports whether the lesson has been completed.
func (p *Progress) Done(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed[id]
}

// MarkDone records completion and flushes to disk.
func (p *Progress) MarkDone(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed[id] {
		return nil
	}
	p.completed[id] = true
	return p.flushLocked()
}

// Reset clears completion for one lesson and flushes to disk.
func (p *Progress) Reset(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.completed[id] {
		return nil
	}
	delete(p.completed, id)
	return p.flushLocked()
}

// Completed returns the completed lesson ids, sorted.
func (p *Progress) Completed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.completed))
	for id := range p.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Progress) flushLocked() error {
	rec := progressRecord{Completed: make([]string, 0, len(p.completed))}
	for id := range p.completed {
		rec.Completed = append(rec.Completed, id)
	}
	sort.Strings(rec.Completed)

	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := fsutil.WriteFile(p.path, data); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	return nil
}
