// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
	"github.com/scetiner/zustand-playground-sub000/internal/lesson"
	"github.com/scetiner/zustand-playground-sub000/internal/playground"
	"github.com/scetiner/zustand-playground-sub000/internal/storage"
	"github.com/scetiner/zustand-playground-sub000/internal/util"
)

func TestReadSnippet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippet.ts")
	if err := os.WriteFile(path, []byte("const x = 1;\n"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := readSnippet(path)
	if err != nil {
		t.Fatalf("readSnippet: %v", err)
	}
	if got != "const x = 1;\n" {
		t.Errorf("readSnippet = %q", got)
	}

	if _, err := readSnippet(filepath.Join(t.TempDir(), "missing.ts")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadCatalogDefault(t *testing.T) {
	c, err := loadCatalog("", util.DefaultConfig())
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if len(c.Lessons) == 0 {
		t.Fatal("default catalog is empty")
	}
}

// TestEveryLessonStarterRuns tests that each shipped starter executes and
// resolves to the binding its lesson expects.
func TestEveryLessonStarterRuns(t *testing.T) {
	catalog, err := lesson.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, l := range catalog.Lessons {
		t.Run(l.ID, func(t *testing.T) {
			engine := playground.New(storage.NewMemory(), logger)
			defer engine.Close()

			res := engine.Run(l.Starter)
			if !res.OK {
				t.Fatalf("starter failed: %s", res.Err)
			}

			switch res.Kind {
			case artifact.KindStore:
				if res.StoreName != l.Binding {
					t.Errorf("resolved %q, lesson expects %q", res.StoreName, l.Binding)
				}
			case artifact.KindStores:
				if _, ok := res.Stores[l.Binding]; !ok {
					t.Errorf("multi-store result missing %q", l.Binding)
				}
			case artifact.KindComponent:
				found := false
				for _, name := range artifact.ComponentNames {
					if name == l.Binding {
						found = true
					}
				}
				if !found {
					t.Errorf("component lesson expects non-component binding %q", l.Binding)
				}
			default:
				t.Errorf("starter resolved to %v", res.Kind)
			}
		})
	}
}

// TestEveryLessonSolutionRuns tests the recorded solutions the same way.
func TestEveryLessonSolutionRuns(t *testing.T) {
	catalog, err := lesson.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, l := range catalog.Lessons {
		if l.Solution == "" {
			continue
		}
		t.Run(l.ID, func(t *testing.T) {
			engine := playground.New(storage.NewMemory(), logger)
			defer engine.Close()

			res := engine.Run(l.Solution)
			if !res.OK {
				t.Fatalf("solution failed: %s", res.Err)
			}
			if res.Kind == artifact.KindNone {
				t.Error("solution produced no artifact")
			}
		})
	}
}

func TestLessonSatisfied(t *testing.T) {
	catalog, err := lesson.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	state := &replState{catalog: catalog}

	counter, ok := catalog.Find("counter")
	if !ok {
		t.Fatal("counter lesson missing")
	}

	tests := []struct {
		name string
		res  *artifact.Result
		want bool
	}{
		{
			name: "matching store",
			res:  &artifact.Result{Kind: artifact.KindStore, StoreName: "useCounterStore", OK: true},
			want: true,
		},
		{
			name: "other store",
			res:  &artifact.Result{Kind: artifact.KindStore, StoreName: "useTodoStore", OK: true},
			want: false,
		},
		{
			name: "no artifact",
			res:  &artifact.Result{Kind: artifact.KindNone, OK: true},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := state.lessonSatisfied(counter, tt.res); got != tt.want {
				t.Errorf("lessonSatisfied = %v, want %v", got, tt.want)
			}
		})
	}
}
