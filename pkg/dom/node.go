package dom

import (
	"maps"
	"strconv"

	"github.com/vango-dev/livetree/pkg/vdom"
)

// Node is a live element, text or comment node.
type Node struct {
	id    int
	kind  vdom.VKind
	tag   string
	text  string
	key   string
	attrs map[string]string
	props map[string]any

	parent      *Node
	first, last *Node
	prev, next  *Node

	// Placeholder marks an element owned by another renderer.
	Placeholder bool
}

// ID returns the node's identifier within its document, such as "n3".
func (n *Node) ID() string {
	if n == nil {
		return ""
	}
	return "n" + strconv.Itoa(n.id)
}

func (n *Node) Kind() vdom.VKind { return n.kind }
func (n *Node) Tag() string      { return n.tag }
func (n *Node) Text() string     { return n.text }
func (n *Node) Key() string      { return n.key }
func (n *Node) Parent() *Node    { return n.parent }

func (n *Node) FirstChild() *Node  { return n.first }
func (n *Node) LastChild() *Node   { return n.last }
func (n *Node) NextSibling() *Node { return n.next }
func (n *Node) PrevSibling() *Node { return n.prev }

// Children returns the node's children in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.first; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of the node's attributes.
func (n *Node) Attrs() map[string]string {
	return maps.Clone(n.attrs)
}

// Prop returns a live property, or nil when it was never set.
func (n *Node) Prop(name string) any {
	return n.props[name]
}

// Interact sets a live property the way user input would: nothing is
// written to the op log.
func (n *Node) Interact(name string, value any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
}

// Contains reports whether c is n or one of its descendants.
func (n *Node) Contains(c *Node) bool {
	for ; c != nil; c = c.parent {
		if c == n {
			return true
		}
	}
	return false
}

func (n *Node) unlink() {
	p := n.parent
	if p == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		p.first = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		p.last = n.prev
	}
	n.parent, n.prev, n.next = nil, nil, nil
}

// link inserts n into p before ref, or last when ref is nil.
func (n *Node) link(p, ref *Node) {
	n.parent = p
	if ref == nil {
		n.prev = p.last
		if p.last != nil {
			p.last.next = n
		} else {
			p.first = n
		}
		p.last = n
		return
	}
	n.next = ref
	n.prev = ref.prev
	if ref.prev != nil {
		ref.prev.next = n
	} else {
		p.first = n
	}
	ref.prev = n
}
