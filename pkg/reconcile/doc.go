// Package reconcile mutates a live node tree in place so that it matches a
// descriptor tree.
//
// The live tree is reached only through the Tree interface, so any node
// type can be reconciled: an in-memory tree, a server-side DOM mirror or a
// binding to a real document.
//
// # Matching
//
// Children are matched in one pass over the descriptor children. A child
// with a key claims the live sibling with the same key, wherever it is,
// and is moved into place. An unkeyed child takes the first compatible
// unkeyed live sibling at or after the current position; unkeyed siblings
// skipped on the way are discarded. Live siblings whose keys were never
// claimed are discarded at the very end of the pass, so a descriptor that
// appears later can still reclaim them.
//
// # Hooks
//
// Hooks let a component system take part in every decision: veto a
// discard, observe additions, preservations and discards, take over a
// subtree's children, or resolve deferred component nodes.
//
//	r := reconcile.New[*dom.Node](doc, reconcile.Hooks[*dom.Node]{
//	    OnBeforeDiscard: func(n *dom.Node) bool { return !busy[n] },
//	})
//	err := r.Reconcile(root, vdom.Ul(items))
//
// # Attributes
//
// Attribute writes are compared against the last value this reconciler
// applied to the node, never against values read back from the live tree.
// Property mirrors (value, checked, selected and indeterminate by default)
// are compared with and assigned to the live property instead.
package reconcile
