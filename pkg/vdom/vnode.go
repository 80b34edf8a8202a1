package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindComment                // Comment node
	KindFragment               // Grouping without wrapper
	KindComponent              // Component, rendered on demand
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode is a descriptor node.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes and event handlers
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText and KindComment
	Comp     Component // For KindComponent and deferred nodes
	Deferred bool      // Not yet materialized; render Comp when reached
}

// Props holds attributes and event handlers.
type Props map[string]any

// IsDeferred reports whether the node must be rendered by its component
// before it can be matched.
func (v *VNode) IsDeferred() bool {
	return v != nil && (v.Deferred || v.Kind == KindComponent)
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventHandler(key) {
			return true
		}
	}
	return false
}

// Count returns the number of nodes in the tree rooted at v.
func (v *VNode) Count() int {
	if v == nil {
		return 0
	}
	n := 1
	for _, c := range v.Children {
		n += c.Count()
	}
	return n
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

// IsEventHandler returns true if the key is an event handler (starts with "on").
// Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func IsEventHandler(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// Component is anything that can render to a VNode.
type Component interface {
	Render() *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}
