// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package artifact

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// componentMarker is the hidden property the defineComponent primitive
// sets on its return value.
const componentMarker = "__zplayComponent"

// Component is the Go-side view of a renderable definition. The core does
// not render UI itself; Render produces a text projection for the preview
// pane by invoking the definition's render function on the run loop.
type Component struct {
	name   string
	render goja.Callable
	do     func(func()) bool
}

// newComponent wraps a renderable binding. Accepts either a marked object
// from defineComponent or a bare function used directly as the render
// body. Returns nil when the value is neither.
func newComponent(name string, v goja.Value, do func(func()) bool) *Component {
	if fn, ok := goja.AssertFunction(v); ok {
		return &Component{name: name, render: fn, do: do}
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	marker := obj.Get(componentMarker)
	if marker == nil || !marker.ToBoolean() {
		return nil
	}
	if n := obj.Get("name"); n != nil && !goja.IsUndefined(n) && n.String() != "" {
		name = n.String()
	}
	fn, ok := goja.AssertFunction(obj.Get("render"))
	if !ok {
		return nil
	}
	return &Component{name: name, render: fn, do: do}
}

// Name returns the component's display name.
func (c *Component) Name() string {
	return c.name
}

// Render invokes the render function and stringifies the result: strings
// pass through, anything else is serialized structurally. Returns an
// empty string when the owning run loop is gone.
func (c *Component) Render() (string, error) {
	var out string
	var renderErr error
	ok := c.do(func() {
		v, err := c.render(goja.Undefined())
		if err != nil {
			renderErr = fmt.Errorf("render failed: %w", err)
			return
		}
		out = stringify(v)
	})
	if !ok {
		return "", nil
	}
	return out, renderErr
}

func stringify(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	exported := v.Export()
	if s, ok := exported.(string); ok {
		return s
	}
	data, err := json.Marshal(exported)
	if err != nil {
		return fmt.Sprintf("%v", exported)
	}
	return string(data)
}
