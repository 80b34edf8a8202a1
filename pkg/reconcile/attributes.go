package reconcile

import (
	"maps"
	"slices"

	"github.com/vango-dev/livetree/pkg/vdom"
)

// record returns the attributes last applied to n, seeding it from the
// live tree the first time n is seen.
func (r *Reconciler[N]) record(n N) map[string]string {
	if rec, ok := r.applied[n]; ok {
		return rec
	}
	rec := make(map[string]string)
	for name, value := range r.tree.Attributes(n) {
		if !r.mirrors[name] {
			rec[name] = value
		}
	}
	r.applied[n] = rec
	return rec
}

// skipProp reports props that are never written as attributes.
func skipProp(name string) bool {
	return name == "key" || vdom.IsEventHandler(name)
}

func (r *Reconciler[N]) patchAttributes(live N, desc *vdom.VNode) {
	switch desc.Kind {
	case vdom.KindText, vdom.KindComment:
		if r.tree.Text(live) != desc.Text {
			r.tree.SetText(live, desc.Text)
			r.stats.AttributeWrites++
		}
		return
	case vdom.KindElement:
	default:
		return
	}

	rec := r.record(live)

	for _, name := range slices.Sorted(maps.Keys(desc.Props)) {
		if skipProp(name) {
			continue
		}
		value := desc.Props[name]
		if r.mirrors[name] {
			r.patchProperty(live, name, value)
			continue
		}
		s, ok := vdom.FormatProp(value)
		if !ok {
			continue
		}
		if old, had := rec[name]; had && old == s {
			continue
		}
		r.tree.SetAttribute(live, name, s)
		rec[name] = s
		r.stats.AttributeWrites++
	}

	for _, name := range slices.Sorted(maps.Keys(rec)) {
		if value, has := desc.Props[name]; has && !skipProp(name) {
			if _, ok := vdom.FormatProp(value); ok {
				continue
			}
		}
		r.tree.RemoveAttribute(live, name)
		delete(rec, name)
		r.stats.AttributeWrites++
	}

	for _, name := range r.mirrorNames {
		if _, has := desc.Props[name]; has {
			continue
		}
		if r.tree.Property(live, name) == nil {
			continue
		}
		r.patchProperty(live, name, nil)
	}
}

// patchProperty assigns a mirrored property when the live value differs.
func (r *Reconciler[N]) patchProperty(live N, name string, value any) {
	want := vdom.MirrorValue(name, value)
	if vdom.PropsEqual(r.tree.Property(live, name), want) {
		return
	}
	r.tree.SetProperty(live, name, want)
	r.stats.AttributeWrites++
}
