package dom

import (
	"fmt"
	"slices"

	"github.com/vango-dev/livetree/pkg/vdom"
)

// Document creates nodes and records every mutation made through it.
// It is not safe for concurrent use.
type Document struct {
	lastID int
	ops    []vdom.Patch
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) newNode(kind vdom.VKind) *Node {
	d.lastID++
	return &Node{id: d.lastID, kind: kind}
}

func (d *Document) log(p vdom.Patch) {
	d.ops = append(d.ops, p)
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(vdom.KindElement)
	n.tag = tag
	n.attrs = make(map[string]string)
	d.log(vdom.Patch{Op: vdom.PatchCreateNode, Target: n.ID(), Value: tag})
	return n
}

// CreateText returns a detached text node.
func (d *Document) CreateText(text string) *Node {
	n := d.newNode(vdom.KindText)
	n.text = text
	d.log(vdom.Patch{Op: vdom.PatchCreateNode, Target: n.ID(), Value: "#text"})
	return n
}

// CreateComment returns a detached comment node.
func (d *Document) CreateComment(text string) *Node {
	n := d.newNode(vdom.KindComment)
	n.text = text
	d.log(vdom.Patch{Op: vdom.PatchCreateNode, Target: n.ID(), Value: "#comment"})
	return n
}

// Ops returns a copy of the op log.
func (d *Document) Ops() []vdom.Patch {
	return slices.Clone(d.ops)
}

// Mutations returns the number of recorded ops.
func (d *Document) Mutations() int {
	return len(d.ops)
}

// ResetOps clears the op log.
func (d *Document) ResetOps() {
	d.ops = nil
}

// Kind, FirstChild and NextSibling make Document a reconcile.Walker.

func (d *Document) Kind(n *Node) vdom.VKind              { return n.kind }
func (d *Document) FirstChild(n *Node) *Node             { return n.first }
func (d *Document) NextSibling(n *Node) *Node            { return n.next }
func (d *Document) Tag(n *Node) string                   { return n.tag }
func (d *Document) Key(n *Node) string                   { return n.key }
func (d *Document) Text(n *Node) string                  { return n.text }
func (d *Document) Attributes(n *Node) map[string]string { return n.Attrs() }
func (d *Document) Property(n *Node, name string) any    { return n.Prop(name) }

// SetKey sets the node's key. Keys are bookkeeping and are not logged.
func (d *Document) SetKey(n *Node, key string) {
	n.key = key
}

// SetText replaces a text or comment node's content.
func (d *Document) SetText(n *Node, text string) {
	n.text = text
	d.log(vdom.Patch{Op: vdom.PatchSetText, Target: n.ID(), Value: text})
}

// SetAttribute sets an element attribute.
func (d *Document) SetAttribute(n *Node, name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	d.log(vdom.Patch{Op: vdom.PatchSetAttr, Target: n.ID(), Key: name, Value: value})
}

// RemoveAttribute removes an element attribute.
func (d *Document) RemoveAttribute(n *Node, name string) {
	delete(n.attrs, name)
	d.log(vdom.Patch{Op: vdom.PatchRemoveAttr, Target: n.ID(), Key: name})
}

// SetProperty assigns a live property.
func (d *Document) SetProperty(n *Node, name string, value any) {
	n.Interact(name, value)
	d.log(vdom.Patch{Op: vdom.PatchSetProperty, Target: n.ID(), Key: name, Value: fmt.Sprint(value)})
}

// Create returns a detached node for desc without attributes or children.
func (d *Document) Create(desc *vdom.VNode) *Node {
	switch desc.Kind {
	case vdom.KindText:
		return d.CreateText(desc.Text)
	case vdom.KindComment:
		return d.CreateComment(desc.Text)
	case vdom.KindElement:
		return d.CreateElement(desc.Tag)
	default:
		panic(fmt.Sprintf("dom: cannot create %s node", desc.Kind))
	}
}

// InsertBefore inserts or moves child into parent before ref. A nil ref
// appends.
func (d *Document) InsertBefore(parent, child, ref *Node) {
	if ref != nil && ref.parent != parent {
		panic(fmt.Sprintf("dom: %s is not a child of %s", ref.ID(), parent.ID()))
	}
	if child.Contains(parent) {
		panic(fmt.Sprintf("dom: cannot insert %s into its own subtree", child.ID()))
	}
	if child == ref {
		return
	}

	op := vdom.PatchInsertNode
	if child.parent != nil {
		op = vdom.PatchMoveNode
	}
	child.unlink()
	child.link(parent, ref)
	d.log(vdom.Patch{Op: op, Target: child.ID(), Parent: parent.ID(), Before: ref.ID()})
}

// AppendChild appends child to parent.
func (d *Document) AppendChild(parent, child *Node) {
	d.InsertBefore(parent, child, nil)
}

// RemoveChild detaches child from parent.
func (d *Document) RemoveChild(parent, child *Node) {
	if child.parent != parent {
		panic(fmt.Sprintf("dom: %s is not a child of %s", child.ID(), parent.ID()))
	}
	child.unlink()
	d.log(vdom.Patch{Op: vdom.PatchRemoveNode, Target: child.ID(), Parent: parent.ID()})
}
