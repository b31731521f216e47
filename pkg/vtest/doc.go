// Package vtest provides testing helpers for lux trees.
//
// A Harness mounts a tree on an in-memory surface and exposes assertions
// over the rendered HTML, the JSON snapshot and the recorded surface ops.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t)
//	    n := h.Mount(vdom.Comp(counter))
//	    h.ExpectHTML("<button>0</button>")
//
//	    h.ResetOps()
//	    h.Click(n)
//	    h.ExpectOps(surface.OpSetText, 1)
//	    h.ExpectOpCount(1)
//	}
//
// # Render Assertions
//
// Assert on rendered HTML output of a description without a harness:
//
//	vtest.ExpectContains(t, Div("Welcome Admin"), "Welcome Admin")
//	vtest.ExpectAttribute(t, Button(Class("btn-primary")), "class", "btn-primary")
//
// HTML mismatches are reported with a character diff; snapshot mismatches
// with the JSON merge patch that would turn the expected snapshot into the
// actual one.
package vtest
