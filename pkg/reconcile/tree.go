package reconcile

import "github.com/vango-dev/livetree/pkg/vdom"

// Walker reads the shape of a live tree. The zero value of N means "no
// node".
type Walker[N comparable] interface {
	// Kind returns KindElement, KindText or KindComment.
	Kind(n N) vdom.VKind
	FirstChild(n N) N
	NextSibling(n N) N
}

// Tree reads and mutates a live tree.
type Tree[N comparable] interface {
	Walker[N]

	// Tag returns an element's tag name.
	Tag(n N) string

	// Key returns the node's key, or "" when it has none.
	Key(n N) string
	SetKey(n N, key string)

	// Text returns the content of a text or comment node.
	Text(n N) string
	SetText(n N, text string)

	// Attributes returns the node's current attributes. It is read once,
	// the first time the reconciler patches a node it did not create.
	Attributes(n N) map[string]string
	SetAttribute(n N, name, value string)
	RemoveAttribute(n N, name string)

	// Property returns a live property, or nil when it was never set.
	Property(n N, name string) any
	SetProperty(n N, name string, value any)

	// Create returns a detached node of desc's kind and tag (or text).
	// Attributes and children are applied by the reconciler.
	Create(desc *vdom.VNode) N

	// InsertBefore inserts or moves child into parent before ref. A zero
	// ref appends.
	InsertBefore(parent, child, ref N)
	RemoveChild(parent, child N)
}

// Walk visits n and its descendants top-down. When visit returns false the
// node's children are skipped.
func Walk[N comparable](w Walker[N], n N, visit func(n N, kind vdom.VKind) bool) {
	var zero N
	if n == zero {
		return
	}
	if !visit(n, w.Kind(n)) {
		return
	}
	for c := w.FirstChild(n); c != zero; c = w.NextSibling(c) {
		Walk(w, c, visit)
	}
}

// Children returns the children of n in order.
func Children[N comparable](w Walker[N], n N) []N {
	var zero N
	var out []N
	for c := w.FirstChild(n); c != zero; c = w.NextSibling(c) {
		out = append(out, c)
	}
	return out
}
