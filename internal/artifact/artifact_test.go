// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package artifact

import (
	"testing"
)

// TestCandidateNames tests that the probe list is deduplicated and starts
// with the paired names so the dual-store exercise is always probed.
func TestCandidateNames(t *testing.T) {
	names := CandidateNames()

	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate candidate name %q", n)
		}
		seen[n] = true
	}

	if names[0] != PairedStoreNames[0] || names[1] != PairedStoreNames[1] {
		t.Errorf("paired names not first: %v", names[:2])
	}

	for _, n := range SingleStoreNames {
		if !seen[n] {
			t.Errorf("single-store candidate %q missing from probe list", n)
		}
	}
	for _, n := range ComponentNames {
		if !seen[n] {
			t.Errorf("component candidate %q missing from probe list", n)
		}
	}
}

// TestSingleStoreProbeIncludesLonePairHalves tests that each paired name
// can still resolve alone, after every dedicated single-store name.
func TestSingleStoreProbeIncludesLonePairHalves(t *testing.T) {
	idx := make(map[string]int)
	for i, n := range SingleStoreNames {
		idx[n] = i
	}

	for _, paired := range PairedStoreNames {
		pos, ok := idx[paired]
		if !ok {
			t.Fatalf("paired name %q missing from single probe list", paired)
		}
		if pos < len(SingleStoreNames)-len(PairedStoreNames) {
			t.Errorf("paired name %q probed too early (index %d)", paired, pos)
		}
	}
}

// TestKindString tests the display names.
func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNone, "none"},
		{KindStore, "store"},
		{KindStores, "stores"},
		{KindComponent, "component"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// TestFailureCarriesNoHandles tests the failure constructor.
func TestFailureCarriesNoHandles(t *testing.T) {
	res := Failure(7, "boom", nil)
	if res.OK {
		t.Error("failure result marked OK")
	}
	if res.Kind != KindNone {
		t.Errorf("kind = %v, want KindNone", res.Kind)
	}
	if res.Generation != 7 {
		t.Errorf("generation = %d", res.Generation)
	}
	if res.Store != nil || res.Stores != nil || res.Component != nil {
		t.Error("failure result should carry no handles")
	}
	if res.IsMulti() {
		t.Error("failure result reported multi")
	}
}
