// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package storage

import (
	"path/filepath"
	"testing"
)

// TestMemoryRoundTrip tests set/get/remove against the in-memory store.
func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()

	if _, ok := m.GetItem("counter"); ok {
		t.Error("expected missing key before set")
	}

	m.SetItem("counter", `{"state":{"count":2},"version":0}`)
	v, ok := m.GetItem("counter")
	if !ok {
		t.Fatal("expected key after set")
	}
	if v != `{"state":{"count":2},"version":0}` {
		t.Errorf("value = %q", v)
	}

	m.SetItem("counter", "replaced")
	if v, _ := m.GetItem("counter"); v != "replaced" {
		t.Errorf("value after overwrite = %q, want %q", v, "replaced")
	}

	m.RemoveItem("counter")
	if _, ok := m.GetItem("counter"); ok {
		t.Error("expected key gone after remove")
	}

	// Removing a missing key is a no-op
	m.RemoveItem("counter")
}

// TestFilePersistence tests that file-backed values survive reopen.
func TestFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	f.SetItem("theme", `{"state":{"mode":"dark"},"version":1}`)
	f.SetItem("cart", `{"state":{"items":[]},"version":0}`)
	f.RemoveItem("cart")

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	v, ok := reopened.GetItem("theme")
	if !ok {
		t.Fatal("expected theme key after reopen")
	}
	if v != `{"state":{"mode":"dark"},"version":1}` {
		t.Errorf("theme = %q", v)
	}
	if _, ok := reopened.GetItem("cart"); ok {
		t.Error("removed key came back after reopen")
	}
}

// TestFileMissingIsEmpty tests that opening a nonexistent path yields an
// empty store rather than an error.
func TestFileMissingIsEmpty(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "nope", "storage.json"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, ok := f.GetItem("anything"); ok {
		t.Error("expected empty store")
	}
}
