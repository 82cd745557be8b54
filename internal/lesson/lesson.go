// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package lesson loads the exercise catalog and tracks completion. Lesson
// content is pure data: instructional text plus starter source in the
// typed dialect. The expected binding names are validated against the
// artifact tables so the catalog and the resolver stay in lockstep.
package lesson

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
)

//go:embed lessons.yaml
var embeddedCatalog []byte

// Lesson is one exercise. Solution is optional; lessons whose starter is
// already complete omit it.
type Lesson struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Summary  string   `yaml:"summary"`
	Binding  string   `yaml:"binding"`
	Starter  string   `yaml:"starter"`
	Hints    []string `yaml:"hints"`
	Solution string   `yaml:"solution"`
}

// Catalog is the ordered lesson list.
type Catalog struct {
	Lessons []Lesson `yaml:"lessons"`
}

// LoadDefault parses the embedded catalog.
func LoadDefault() (*Catalog, error) {
	return parse(embeddedCatalog)
}

// LoadFile parses a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson catalog: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse lesson catalog: %w", err)
	}
	if len(c.Lessons) == 0 {
		return nil, fmt.Errorf("lesson catalog is empty")
	}

	known := make(map[string]bool)
	for _, name := range artifact.CandidateNames() {
		known[name] = true
	}

	seen := make(map[string]bool)
	for i, l := range c.Lessons {
		if l.ID == "" {
			return nil, fmt.Errorf("lesson %d has no id", i)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		seen[l.ID] = true
		if l.Starter == "" {
			return nil, fmt.Errorf("lesson %q has no starter source", l.ID)
		}
		if l.Binding != "" && !known[l.Binding] {
			return nil, fmt.Errorf("lesson %q expects binding %q, which the resolver does not probe", l.ID, l.Binding)
		}
	}
	return &c, nil
}

// Find returns the lesson with the given id.
func (c *Catalog) Find(id string) (*Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].ID == id {
			return &c.Lessons[i], true
		}
	}
	return nil, false
}

// IDs returns the lesson ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Lessons))
	for i, l := range c.Lessons {
		ids[i] = l.ID
	}
	return ids
}
