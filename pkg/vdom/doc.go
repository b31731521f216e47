// Package vdom describes trees for the reconciler to mount.
//
// A tree is built from Nodes by render functions. A Node is a plain
// description: the reconciler fills in its Handle when it is mounted and
// never reads anything else back from the surface.
//
//	vdom.El("ul", vdom.Class("list"),
//	    vdom.El("li", vdom.Key("a"), "Alpha"),
//	    vdom.El("li", vdom.Key("b"), "Beta"),
//	)
//
// # Node Kinds
//
//   - KindElement: an element with attributes and children
//   - KindText, KindComment: leaf content
//   - KindComponent: an instance of a Definition with its own state
//   - KindBlock: a reactive region (If, Each) that regenerates its
//     children when its dependencies change
//
// # Attributes
//
// Attribute values are static (strings, numbers, booleans) or dynamic: a
// reactive.Reader whose value is written to the surface whenever it
// changes, without re-rendering the node.
//
//	count := reactive.NewRef(0)
//	vdom.El("span", vdom.Attr("data-count", count))
//
// # Components
//
// A Definition bundles props, initial state, methods and a RenderFunc.
// Inside a render function, child components and blocks are created
// through the Context so that they keep their identity across re-renders.
package vdom
