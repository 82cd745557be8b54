// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package console provides a process-local capture buffer for output calls
// made by executed snippets. Entries are recorded in call order and handed
// to the caller as a snapshot after the run; the buffer is never reused
// across runs.
package console

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level tags a captured entry by severity.
type Level int

const (
	LevelLog Level = iota
	LevelWarn
	LevelError
)

// String returns the display tag for a level. Plain log entries have no tag.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Entry is one captured output event.
type Entry struct {
	Level   Level
	Message string
}

// Tagged returns the message prefixed with its severity tag so warn/error
// entries can be styled distinctly by the display layer.
func (e Entry) Tagged() string {
	if tag := e.Level.String(); tag != "" {
		return "[" + tag + "] " + e.Message
	}
	return e.Message
}

// Capture accumulates entries for a single run.
//
// A fresh Capture is constructed per run. It is not safe for concurrent use;
// all recording happens on the sandbox run loop.
type Capture struct {
	entries []Entry
}

// New returns an empty capture buffer.
func New() *Capture {
	return &Capture{}
}

// Record formats each value and appends one entry. Objects and arrays are
// serialized structurally, primitives are stringified, values are joined
// with single spaces. Recording cannot fail; unserializable values fall
// back to raw stringification.
func (c *Capture) Record(level Level, values ...interface{}) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	c.entries = append(c.entries, Entry{Level: level, Message: strings.Join(parts, " ")})
}

// Drain returns the accumulated entries in record order as a copy; later
// recording does not mutate the returned slice.
func (c *Capture) Drain() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries recorded so far.
func (c *Capture) Len() int {
	return len(c.entries)
}

// formatValue renders one value for display.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool, int, int64, uint64, float64:
		return fmt.Sprintf("%v", val)
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
