package dom

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vango-dev/livetree/pkg/vdom"
)

// BuildOption configures Build.
type BuildOption func(*builder)

// WithPropertyMirrors sets the props Build assigns as live properties
// rather than attributes. It should match the set given to the reconciler
// that later patches the subtree. The default is vdom.DefaultPropertyMirrors.
func WithPropertyMirrors(names ...string) BuildOption {
	return func(b *builder) {
		b.mirrors = make(map[string]bool, len(names))
		for _, name := range names {
			b.mirrors[strings.ToLower(name)] = true
		}
	}
}

type builder struct {
	d       *Document
	mirrors map[string]bool
}

// maxBuildDepth bounds nested component renders while building.
const maxBuildDepth = 32

// Build materializes desc as a detached subtree. The root must resolve to
// an element, text or comment node; fragments are allowed below the root.
func (d *Document) Build(desc *vdom.VNode, opts ...BuildOption) (*Node, error) {
	b := &builder{d: d}
	WithPropertyMirrors(vdom.DefaultPropertyMirrors...)(b)
	for _, opt := range opts {
		opt(b)
	}

	desc, err := render(desc)
	if err != nil {
		return nil, err
	}
	if desc == nil || desc.Kind == vdom.KindFragment {
		return nil, fmt.Errorf("dom: build root must be a single node")
	}
	return b.build(desc)
}

// MustBuild is Build for descriptor trees known to be valid.
func (d *Document) MustBuild(desc *vdom.VNode, opts ...BuildOption) *Node {
	n, err := d.Build(desc, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func (b *builder) build(desc *vdom.VNode) (*Node, error) {
	d := b.d
	n := d.Create(desc)
	if desc.Kind != vdom.KindElement {
		return n, nil
	}
	if desc.Key != "" {
		d.SetKey(n, desc.Key)
	}
	for _, name := range slices.Sorted(maps.Keys(desc.Props)) {
		if name == "key" || vdom.IsEventHandler(name) {
			continue
		}
		value := desc.Props[name]
		if b.mirrors[name] {
			if value != nil {
				d.SetProperty(n, name, vdom.MirrorValue(name, value))
			}
			continue
		}
		if s, ok := vdom.FormatProp(value); ok {
			d.SetAttribute(n, name, s)
		}
	}
	if err := b.buildChildren(n, desc.Children); err != nil {
		return nil, err
	}
	return n, nil
}

func (b *builder) buildChildren(parent *Node, children []*vdom.VNode) error {
	for _, c := range children {
		c, err := render(c)
		if err != nil {
			return err
		}
		switch {
		case c == nil:
		case c.Kind == vdom.KindFragment:
			if err := b.buildChildren(parent, c.Children); err != nil {
				return err
			}
		default:
			child, err := b.build(c)
			if err != nil {
				return err
			}
			b.d.AppendChild(parent, child)
		}
	}
	return nil
}

// render resolves deferred nodes through their components.
func render(desc *vdom.VNode) (*vdom.VNode, error) {
	for depth := 0; desc.IsDeferred(); depth++ {
		if depth >= maxBuildDepth || desc.Comp == nil {
			return nil, fmt.Errorf("dom: cannot render deferred node %q", desc.Key)
		}
		next := desc.Comp.Render()
		if next != nil && next.Key == "" && desc.Key != "" {
			keyed := *next
			keyed.Key = desc.Key
			next = &keyed
		}
		desc = next
	}
	return desc, nil
}
