// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

// Package sandbox executes normalized snippets in a goja runtime whose
// only free variables are the injected capability set. One Sandbox per
// run: fresh runtime, fresh log capture, fresh store registry.
package sandbox

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/scetiner/zustand-playground-sub000/internal/artifact"
	"github.com/scetiner/zustand-playground-sub000/internal/console"
	"github.com/scetiner/zustand-playground-sub000/internal/middleware"
	"github.com/scetiner/zustand-playground-sub000/internal/storage"
	"github.com/scetiner/zustand-playground-sub000/internal/store"
)

// envParams are the parameter names of the scaffold function, in call
// order. This is the complete capability set executed code can reach;
// it is identical on every run within a build and never lesson-specific.
var envParams = []string{
	"create",
	"persist",
	"devtools",
	"immer",
	"storage",
	"setTimeout",
	"clearTimeout",
	"defineComponent",
}

// Environment is the fixed table of collaborators injected into executed
// code. Constructed once at startup and passed by reference; executed
// code observes and calls it but never mutates it.
type Environment struct {
	Storage storage.Storage
	Logger  *slog.Logger
}

// ScriptError is a synchronous failure during script construction or
// top-level execution.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Outcome is the raw result of one execution: the probed top-level
// bindings on success, or the failure.
type Outcome struct {
	Bindings *Bindings
	Err      error
}

// Bindings is the uniform object the scaffold returns: candidate binding
// names mapped to whatever the script bound them to. Loop-confined; the
// resolver reads it inside the same run-loop dispatch that produced it.
type Bindings struct {
	obj *goja.Object
}

// Lookup reports a binding that is defined and non-null.
func (b *Bindings) Lookup(name string) (goja.Value, bool) {
	if b == nil || b.obj == nil {
		return nil, false
	}
	v := b.obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	return v, true
}

// Names returns the bound candidate names.
func (b *Bindings) Names() []string {
	if b == nil || b.obj == nil {
		return nil
	}
	return b.obj.Keys()
}

var _ artifact.BindingSet = (*Bindings)(nil)

// Sandbox wraps one run's runtime, loop, capture, and registry.
type Sandbox struct {
	env      Environment
	loop     *Loop
	vm       *goja.Runtime
	capture  *console.Capture
	registry *store.Registry

	nextTimer int64
	timers    map[int64]*time.Timer
}

// New creates a sandbox ready to execute one script.
func New(env Environment) *Sandbox {
	s := &Sandbox{
		env:      env,
		loop:     NewLoop(),
		capture:  console.New(),
		registry: store.NewRegistry(),
		timers:   make(map[int64]*time.Timer),
	}
	return s
}

// Capture returns the run's log capture channel.
func (s *Sandbox) Capture() *console.Capture {
	return s.capture
}

// Registry returns the run's store registry.
func (s *Sandbox) Registry() *store.Registry {
	return s.registry
}

// Do dispatches fn onto the run loop and waits. False when the sandbox
// is closed.
func (s *Sandbox) Do(fn func()) bool {
	return s.loop.Do(fn)
}

// Close stops the run loop. Pending timers from this run still fire their
// Go timer, but their VM callback is dropped: an orphaned, unobserved
// continuation.
func (s *Sandbox) Close() {
	s.loop.Close()
}

// Execute wraps the script in the scaffold function and runs it to
// completion on the run loop. Any synchronous throw, including syntax
// errors from text the normalizer let through, becomes the failure
// outcome. Exceptions thrown later inside timer callbacks are not caught
// here; they surface only if the script routed them through console.
func (s *Sandbox) Execute(script string) Outcome {
	var out Outcome
	if ok := s.loop.Do(func() {
		out = s.execute(script)
	}); !ok {
		out = Outcome{Err: &ScriptError{Message: "sandbox is closed"}}
	}
	return out
}

func (s *Sandbox) execute(script string) Outcome {
	if s.vm == nil {
		s.vm = goja.New()
		if err := s.installConsole(); err != nil {
			return Outcome{Err: fmt.Errorf("failed to install console: %w", err)}
		}
	}

	scaffold := buildScaffold(script)

	compiled, err := s.vm.RunString(scaffold)
	if err != nil {
		return Outcome{Err: toScriptError(err)}
	}
	fn, ok := goja.AssertFunction(compiled)
	if !ok {
		return Outcome{Err: &ScriptError{Message: "scaffold did not produce a callable"}}
	}

	result, err := fn(goja.Undefined(), s.environmentArgs()...)
	if err != nil {
		return Outcome{Err: toScriptError(err)}
	}

	obj, ok := result.(*goja.Object)
	if !ok {
		return Outcome{Err: &ScriptError{Message: "scaffold returned no bindings object"}}
	}
	return Outcome{Bindings: &Bindings{obj: obj}}
}

// buildScaffold produces the single callable scope: the environment names
// as parameters, the user script as the body, and a trailing probe block
// assembling the candidate bindings into one returned object.
func buildScaffold(script string) string {
	var b strings.Builder
	b.WriteString("(function(")
	b.WriteString(strings.Join(envParams, ", "))
	b.WriteString(") {\n")
	b.WriteString(script)
	b.WriteString("\n;var __bindings = {};\n")
	for _, name := range artifact.CandidateNames() {
		fmt.Fprintf(&b, "if (typeof %s !== \"undefined\") { __bindings[%q] = %s; }\n", name, name, name)
	}
	b.WriteString("return __bindings;\n})")
	return b.String()
}

// environmentArgs builds the injected capability values in envParams
// order.
func (s *Sandbox) environmentArgs() []goja.Value {
	vm := s.vm
	return []goja.Value{
		vm.ToValue(store.MakeCreate(vm, s.registry)),
		vm.ToValue(middleware.MakePersist(vm, s.env.Storage)),
		vm.ToValue(middleware.MakeDevtools(vm, s.env.Logger)),
		vm.ToValue(middleware.MakeImmer(vm)),
		s.storageObject(),
		vm.ToValue(s.jsSetTimeout),
		vm.ToValue(s.jsClearTimeout),
		vm.ToValue(s.jsDefineComponent),
	}
}

// installConsole sets the global console object routing log/warn/error
// into the capture buffer.
func (s *Sandbox) installConsole() error {
	obj := s.vm.NewObject()
	record := func(level console.Level) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			values := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				values[i] = arg.Export()
			}
			s.capture.Record(level, values...)
			return goja.Undefined()
		}
	}
	if err := obj.Set("log", record(console.LevelLog)); err != nil {
		return err
	}
	if err := obj.Set("warn", record(console.LevelWarn)); err != nil {
		return err
	}
	if err := obj.Set("error", record(console.LevelError)); err != nil {
		return err
	}
	return s.vm.Set("console", obj)
}

// storageObject exposes the shared storage handle with localStorage
// ergonomics: getItem returns null for missing keys.
func (s *Sandbox) storageObject() goja.Value {
	vm := s.vm
	obj := vm.NewObject()
	_ = obj.Set("getItem", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		v, ok := s.env.Storage.GetItem(call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	_ = obj.Set("setItem", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.ToValue("storage.setItem(key, value) requires two arguments"))
		}
		s.env.Storage.SetItem(call.Arguments[0].String(), call.Arguments[1].String())
		return goja.Undefined()
	})
	_ = obj.Set("removeItem", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		s.env.Storage.RemoveItem(call.Arguments[0].String())
		return goja.Undefined()
	})
	return obj
}

// jsSetTimeout schedules a callback on the run loop after a delay. The
// callback is dropped if the sandbox is closed before it fires.
func (s *Sandbox) jsSetTimeout(call goja.FunctionCall) goja.Value {
	vm := s.vm
	if len(call.Arguments) == 0 {
		panic(vm.ToValue("setTimeout() requires a callback"))
	}
	cb, ok := goja.AssertFunction(call.Arguments[0])
	if !ok {
		panic(vm.ToValue("setTimeout() requires a callback function"))
	}
	var delay time.Duration
	if len(call.Arguments) > 1 {
		ms := call.Arguments[1].ToInteger()
		if ms > 0 {
			delay = time.Duration(ms) * time.Millisecond
		}
	}
	extra := make([]goja.Value, 0, len(call.Arguments))
	if len(call.Arguments) > 2 {
		extra = append(extra, call.Arguments[2:]...)
	}

	s.nextTimer++
	id := s.nextTimer
	s.timers[id] = time.AfterFunc(delay, func() {
		s.loop.Post(func() {
			if _, live := s.timers[id]; !live {
				return
			}
			delete(s.timers, id)
			if _, err := cb(goja.Undefined(), extra...); err != nil {
				// Late async errors are not routed to the failure channel;
				// the script must log them itself to see them.
				if s.env.Logger != nil {
					s.env.Logger.Debug("timer callback threw", "error", err)
				}
			}
		})
	})
	return vm.ToValue(id)
}

// jsClearTimeout cancels a pending timer.
func (s *Sandbox) jsClearTimeout(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		return goja.Undefined()
	}
	id := call.Arguments[0].ToInteger()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	return goja.Undefined()
}

// jsDefineComponent is the UI-construction primitive. The core does not
// render; it only marks the definition so the resolver can recognize it.
// Accepts defineComponent(renderFn) or defineComponent({name, render}).
func (s *Sandbox) jsDefineComponent(call goja.FunctionCall) goja.Value {
	vm := s.vm
	if len(call.Arguments) == 0 {
		panic(vm.ToValue("defineComponent() requires a render function or options object"))
	}

	out := vm.NewObject()
	_ = out.Set("__zplayComponent", true)

	arg := call.Arguments[0]
	if _, ok := goja.AssertFunction(arg); ok {
		_ = out.Set("name", "")
		_ = out.Set("render", arg)
		return out
	}

	opts, ok := arg.(*goja.Object)
	if !ok {
		panic(vm.ToValue("defineComponent() requires a render function or options object"))
	}
	if _, ok := goja.AssertFunction(opts.Get("render")); !ok {
		panic(vm.ToValue("defineComponent() options require a render function"))
	}
	if n := opts.Get("name"); n != nil && !goja.IsUndefined(n) {
		_ = out.Set("name", n)
	} else {
		_ = out.Set("name", "")
	}
	_ = out.Set("render", opts.Get("render"))
	return out
}

// toScriptError converts a goja failure to a ScriptError with a clean
// message. Exceptions use String() so Error objects keep their message
// instead of exporting as an empty map.
func toScriptError(err error) error {
	if jsErr, ok := err.(*goja.Exception); ok {
		return &ScriptError{Message: jsErr.String()}
	}
	return &ScriptError{Message: err.Error()}
}
