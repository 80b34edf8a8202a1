package reconcile

import "github.com/vango-dev/livetree/pkg/vdom"

// flatten resolves deferred children and splices fragments into out.
// nil children are dropped.
func (r *Reconciler[N]) flatten(children []*vdom.VNode, out []*vdom.VNode) ([]*vdom.VNode, error) {
	for _, c := range children {
		n, err := r.resolve(c)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		if n.Kind == vdom.KindFragment {
			if out, err = r.flatten(n.Children, out); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// keyIndex maps keys to live element children. Only the first node with a
// given key is indexed; later duplicates are matched positionally.
func (r *Reconciler[N]) keyIndex(parent N) map[string]N {
	var zero N
	index := make(map[string]N)
	for c := r.tree.FirstChild(parent); c != zero; c = r.tree.NextSibling(c) {
		if r.tree.Kind(c) != vdom.KindElement {
			continue
		}
		key := r.keyOf(c)
		if key == "" {
			continue
		}
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = c
	}
	return index
}

// matcher holds the state of one child-list pass.
type matcher[N comparable] struct {
	r      *Reconciler[N]
	parent N
	cursor N

	// index holds keyed live children not yet claimed.
	index map[string]N
	// held are live children the positional scan must not take: keyed
	// nodes and nodes whose discard was vetoed.
	held map[N]bool
}

func (r *Reconciler[N]) diffChildren(parent N, descChildren []*vdom.VNode) error {
	children, err := r.flatten(descChildren, nil)
	if err != nil {
		return err
	}

	m := &matcher[N]{
		r:      r,
		parent: parent,
		cursor: r.tree.FirstChild(parent),
		index:  r.keyIndex(parent),
		held:   make(map[N]bool),
	}
	for _, n := range m.index {
		m.held[n] = true
	}

	for _, desc := range children {
		var (
			match N
			found bool
		)
		if desc.Kind == vdom.KindElement && desc.Key != "" {
			match, found = m.claim(desc)
		} else {
			match, found = m.scan(desc)
		}

		if found {
			if err := m.place(match, desc); err != nil {
				return err
			}
			continue
		}
		if err := m.insert(desc); err != nil {
			return err
		}
	}

	m.finish()
	return nil
}

// claim takes the live node keyed like desc. An incompatible node is
// discarded and reported as no match.
func (m *matcher[N]) claim(desc *vdom.VNode) (N, bool) {
	var zero N
	live, ok := m.index[desc.Key]
	if !ok {
		return zero, false
	}
	delete(m.index, desc.Key)

	if m.r.compatible(live, desc) {
		return live, true
	}
	if live == m.cursor {
		m.cursor = m.r.tree.NextSibling(live)
	}
	if m.r.discard(m.parent, live) {
		delete(m.held, live)
	}
	return zero, false
}

// scan finds the first unheld live node from the cursor compatible with
// desc. Unheld nodes passed over are discarded.
func (m *matcher[N]) scan(desc *vdom.VNode) (N, bool) {
	var zero N
	tree := m.r.tree

	match := zero
	for c := m.cursor; c != zero; c = tree.NextSibling(c) {
		if !m.held[c] && m.r.compatible(c, desc) {
			match = c
			break
		}
	}
	if match == zero {
		return zero, false
	}

	next := zero
	for c := m.cursor; c != match; {
		after := tree.NextSibling(c)
		if m.held[c] || !m.r.discard(m.parent, c) {
			m.held[c] = true
			if next == zero {
				next = c
			}
		}
		c = after
	}
	if next == zero {
		next = match
	}
	m.cursor = next
	return match, true
}

// place moves a matched node to the cursor and patches it.
func (m *matcher[N]) place(match N, desc *vdom.VNode) error {
	r := m.r
	if r.hooks.OnNodePreserved != nil {
		r.hooks.OnNodePreserved(match, desc)
	}
	r.stats.Preserved++

	if match == m.cursor {
		m.cursor = r.tree.NextSibling(match)
	} else {
		r.tree.InsertBefore(m.parent, match, m.cursor)
		r.stats.Moved++
	}
	delete(m.held, match)
	return r.morph(match, desc)
}

// insert creates a node for desc at the cursor.
func (m *matcher[N]) insert(desc *vdom.VNode) error {
	r := m.r
	node := r.tree.Create(desc)
	if desc.Kind == vdom.KindElement && desc.Key != "" {
		r.tree.SetKey(node, desc.Key)
	}
	r.applied[node] = make(map[string]string)
	r.patchAttributes(node, desc)

	r.tree.InsertBefore(m.parent, node, m.cursor)
	r.stats.Added++
	if r.hooks.OnNodeAdded != nil {
		r.hooks.OnNodeAdded(node)
	}

	if desc.Kind != vdom.KindElement || r.isPlaceholder(node) {
		return nil
	}
	return r.diffChildren(node, desc.Children)
}

// finish discards trailing unmatched nodes, then unclaimed keyed nodes in
// live order.
func (m *matcher[N]) finish() {
	var zero N
	tree := m.r.tree

	for c := m.cursor; c != zero; {
		after := tree.NextSibling(c)
		if !m.held[c] {
			m.r.discard(m.parent, c)
		}
		c = after
	}

	if len(m.index) == 0 {
		return
	}
	leftover := make(map[N]bool, len(m.index))
	for _, n := range m.index {
		leftover[n] = true
	}
	for _, c := range Children[N](tree, m.parent) {
		if leftover[c] {
			m.r.discard(m.parent, c)
		}
	}
}

// discard removes n from parent unless OnBeforeDiscard vetoes it, then
// notifies OnNodeDiscarded for every node of the subtree.
func (r *Reconciler[N]) discard(parent, n N) bool {
	if r.hooks.OnBeforeDiscard != nil && !r.hooks.OnBeforeDiscard(n) {
		r.stats.Vetoed++
		return false
	}
	r.tree.RemoveChild(parent, n)
	r.stats.Discarded++

	Walk[N](r.tree, n, func(c N, _ vdom.VKind) bool {
		if r.hooks.OnNodeDiscarded != nil {
			r.hooks.OnNodeDiscarded(c)
		}
		delete(r.applied, c)
		return true
	})
	return true
}
