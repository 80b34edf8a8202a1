package reconcile

import "github.com/vango-dev/livetree/pkg/vdom"

// Hooks are caller callbacks invoked at each reconciliation decision. All
// fields are optional.
type Hooks[N comparable] struct {
	// KeyOf returns a live node's key. Default: Tree.Key.
	KeyOf func(n N) string

	// OnBeforeDiscard is called before a node is removed. Returning false
	// leaves the node where it is.
	OnBeforeDiscard func(n N) bool

	// OnNodeAdded is called after a new node is inserted.
	OnNodeAdded func(n N)

	// OnNodePreserved is called when a live node is matched to a
	// descriptor, before it is moved and patched.
	OnNodePreserved func(live N, desc *vdom.VNode)

	// OnNodeDiscarded is called once for every node of a removed subtree,
	// parents before children.
	OnNodeDiscarded func(n N)

	// OnBeforeChildrenUpdate is called before an element's children are
	// diffed. Returning false skips them; the caller may diff them itself.
	OnBeforeChildrenUpdate func(live N, desc *vdom.VNode) bool

	// OnBeforeElUpdated is called before a matched element is patched.
	// Returning false leaves the element and its subtree untouched.
	OnBeforeElUpdated func(live N, desc *vdom.VNode) bool

	// IsPlaceholder marks live elements owned by another renderer. Their
	// children are never diffed.
	IsPlaceholder func(n N) bool

	// Resolve renders a deferred descriptor. Default: desc.Comp.Render().
	Resolve func(desc *vdom.VNode) (*vdom.VNode, error)
}
