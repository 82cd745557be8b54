// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package storage provides the key/value handle injected into executed
// snippets. The handle is a single process-wide resource shared across all
// runs and lessons; key discipline (one key per exercise) belongs to the
// scripts themselves.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/scetiner/zustand-playground-sub000/internal/fsutil"
)

// Storage is the localStorage-shaped interface scripts see.
type Storage interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(key string) (string, bool)
	// SetItem stores a value under a key, replacing any previous value.
	SetItem(key, value string)
	// RemoveItem deletes a key. Removing a missing key is a no-op.
	RemoveItem(key string)
}

// Memory is an in-process Storage used by tests and the REPL default.
type Memory struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *Memory) SetItem(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *Memory) RemoveItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// File is a Storage backed by a JSON file in the data directory. Every
// write flushes the whole map; the file is small (a handful of persisted
// exercises) so this stays simpler than an append log.
type File struct {
	mu    sync.Mutex
	path  string
	items map[string]string
}

// OpenFile loads (or creates) a file-backed storage at path.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, items: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	if err := json.Unmarshal(data, &f.items); err != nil {
		return nil, fmt.Errorf("failed to parse storage file %s: %w", path, err)
	}
	return f, nil
}

func (f *File) GetItem(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok
}

func (f *File) SetItem(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	f.flushLocked()
}

func (f *File) RemoveItem(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	f.flushLocked()
}

// flushLocked writes the map to disk. Write failures are reported through
// the caller-visible file state on the next open, not as script errors;
// the storage handle contract is non-throwing.
func (f *File) flushLocked() {
	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return
	}
	if err := fsutil.MkdirAll(filepath.Dir(f.path)); err != nil {
		return
	}
	_ = fsutil.WriteFile(f.path, data)
}
