// Package vdom defines descriptor trees: the immutable target shape a
// render pass wants a live tree to match.
//
// # Core Types
//
// VNode is the building block for elements, text, comments, fragments and
// deferred component nodes. Props holds attributes and event handlers.
// Attr and EventHandler are used to build Props.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("todos"),
//	    Li(Key("a"), Text("first")),
//	    Li(Key("b"), Text("second")),
//	)
//
// # Deferred Nodes
//
// A node created with Defer, or a Component passed as a child, is not yet
// materialized. The reconciler asks the owning component to render it
// when it is reached.
//
// # Documents
//
// Decode reads a JSON descriptor document:
//
//	{"tag": "ul", "attrs": {"class": "todos"}, "children": [
//	    {"tag": "li", "key": "a", "children": ["first"]},
//	    {"comment": "end"}
//	]}
//
// # Patches
//
// PatchOp and Patch name the mutations a live tree records while it is
// reconciled.
package vdom
