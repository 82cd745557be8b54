// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package sandbox

import (
	"strings"
	"testing"
	"time"

	"github.com/scetiner/zustand-playground-sub000/internal/storage"
)

func newTestSandbox() *Sandbox {
	return New(Environment{Storage: storage.NewMemory()})
}

// TestExecuteReturnsBindings tests that declared candidate names come back
// in the bindings object and unknown names do not.
func TestExecuteReturnsBindings(t *testing.T) {
	s := newTestSandbox()
	defer s.Close()

	out := s.Execute(`const useCounterStore = create((set) => ({ count: 0 }));
const somethingElse = 42;
`)
	if out.Err != nil {
		t.Fatalf("execute: %v", out.Err)
	}

	s.Do(func() {
		if _, ok := out.Bindings.Lookup("useCounterStore"); !ok {
			t.Error("expected useCounterStore binding")
		}
		if _, ok := out.Bindings.Lookup("somethingElse"); ok {
			t.Error("non-candidate binding should not be probed")
		}
		if _, ok := out.Bindings.Lookup("useCartStore"); ok {
			t.Error("undeclared candidate should be absent")
		}
	})
}

// TestExecuteFailure tests that a throw becomes a ScriptError, not a
// raw exception.
func TestExecuteFailure(t *testing.T) {
	s := newTestSandbox()
	defer s.Close()

	out := s.Execute(`throw new Error('nope');`)
	if out.Err == nil {
		t.Fatal("expected error")
	}
	var scriptErr *ScriptError
	if se, ok := out.Err.(*ScriptError); ok {
		scriptErr = se
	} else {
		t.Fatalf("error type = %T, want *ScriptError", out.Err)
	}
	if !strings.Contains(scriptErr.Message, "nope") {
		t.Errorf("message = %q", scriptErr.Message)
	}
}

// TestExecuteAfterClose tests the closed-sandbox path.
func TestExecuteAfterClose(t *testing.T) {
	s := newTestSandbox()
	s.Close()

	out := s.Execute(`1 + 1`)
	if out.Err == nil {
		t.Fatal("expected error on closed sandbox")
	}
}

// TestEnvironmentIsComplete tests that each injected capability is
// reachable by name from the executed scope.
func TestEnvironmentIsComplete(t *testing.T) {
	s := newTestSandbox()
	defer s.Close()

	var probes []string
	for _, name := range envParams {
		probes = append(probes, "typeof "+name+" !== 'undefined'")
	}
	script := "const ok = " + strings.Join(probes, " && ") + " && typeof console !== 'undefined' && typeof Promise !== 'undefined';\n" +
		"if (!ok) { throw new Error('environment incomplete'); }\n"

	out := s.Execute(script)
	if out.Err != nil {
		t.Fatalf("execute: %v", out.Err)
	}
}

// TestClearTimeout tests that a cancelled timer never fires.
func TestClearTimeout(t *testing.T) {
	s := newTestSandbox()
	defer s.Close()

	out := s.Execute(`const id = setTimeout(() => { console.log('fired'); }, 20);
clearTimeout(id);
`)
	if out.Err != nil {
		t.Fatalf("execute: %v", out.Err)
	}

	time.Sleep(100 * time.Millisecond)
	if n := s.Capture().Len(); n != 0 {
		t.Errorf("captured %d entries, want 0 after clearTimeout", n)
	}
}

// TestBuildScaffoldShape tests the generated scaffold text.
func TestBuildScaffoldShape(t *testing.T) {
	scaffold := buildScaffold("const x = 1;")

	if !strings.HasPrefix(scaffold, "(function(create, persist, devtools, immer, storage, setTimeout, clearTimeout, defineComponent)") {
		t.Errorf("scaffold parameters wrong: %s", scaffold[:80])
	}
	if !strings.Contains(scaffold, "const x = 1;") {
		t.Error("scaffold missing script body")
	}
	if !strings.Contains(scaffold, `typeof useCounterStore !== "undefined"`) {
		t.Error("scaffold missing candidate probe")
	}
	if !strings.Contains(scaffold, "return __bindings;") {
		t.Error("scaffold missing return")
	}
}

// TestLoopPostDropsWhenSaturated tests that Post never blocks the caller:
// with the loop goroutine held by a long job and the queue full, further
// posts are dropped, and the loop keeps working once the job finishes.
func TestLoopPostDropsWhenSaturated(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	release := make(chan struct{})
	if ok := l.Post(func() { <-release }); !ok {
		t.Fatal("Post of blocking job failed")
	}

	dropped := 0
	for i := 0; i < 65; i++ {
		if ok := l.Post(func() {}); !ok {
			dropped++
		}
	}
	if dropped == 0 {
		t.Error("no post dropped with a saturated queue")
	}

	close(release)
	if ok := l.Do(func() {}); !ok {
		t.Error("loop dead after saturation")
	}
}

// TestLoopDoAfterClose tests the loop's closed behavior.
func TestLoopDoAfterClose(t *testing.T) {
	l := NewLoop()
	ran := false
	if ok := l.Do(func() { ran = true }); !ok || !ran {
		t.Fatal("Do on live loop failed")
	}

	l.Close()
	l.Close() // idempotent

	if ok := l.Do(func() { t.Error("job ran on closed loop") }); ok {
		t.Error("Do returned true on closed loop")
	}
	if ok := l.Post(func() {}); ok {
		t.Error("Post returned true on closed loop")
	}
}
