package reactive

import "fmt"

// Derived is a cached computation over other cells.
//
// While it has no subscribers it is lazy: Get and Peek recompute when any
// cell was written since the last computation. The first subscriber turns
// it eager; it then owns an internal observer that the scheduler
// recomputes during flushes. When the last subscriber leaves, the cached
// value is dropped and it is lazy again.
type Derived[T any] struct {
	cellBase
	compute func() T
	equal   func(T, T) bool
	name    string

	value    T
	hasValue bool
	dirty    bool

	// dirty epoch of the last lazy computation
	epoch     uint64
	computing bool

	// obs is non-nil while the cell is eager.
	obs *Observer
}

// NewDerived creates a lazy derived cell for compute. compute must not
// write cells it reads and must not read the derived cell itself.
func NewDerived[T any](s *Scheduler, compute func() T) *Derived[T] {
	return &Derived[T]{
		cellBase: cellBase{s: s, id: s.newID()},
		compute:  compute,
	}
}

// ID returns the cell's identifier.
func (d *Derived[T]) ID() uint64 {
	return d.id
}

// Named sets the name used in logs and errors.
func (d *Derived[T]) Named(name string) *Derived[T] {
	d.name = name
	if d.obs != nil {
		d.obs.name = name
	}
	return d
}

// WithEquals sets the function used to decide whether a recomputed value
// changed. The default is identity.
func (d *Derived[T]) WithEquals(fn func(T, T) bool) *Derived[T] {
	d.equal = fn
	return d
}

func (d *Derived[T]) String() string {
	if d.name != "" {
		return d.name
	}
	return fmt.Sprintf("derived#%d", d.id)
}

// Get returns the value and records the cell as a dependency of the
// running observer, which makes it eager.
func (d *Derived[T]) Get() T {
	if d.computing {
		panic(selfReadError(d.String()))
	}
	// Refresh before subscribing so the running observer is not notified
	// about a value it is about to read.
	if d.obs != nil && (d.dirty || !d.hasValue) {
		d.refresh()
	}
	d.s.track(d)
	return d.Peek()
}

// Peek returns the current value without recording a dependency,
// recomputing first if it is stale.
func (d *Derived[T]) Peek() T {
	if d.computing {
		panic(selfReadError(d.String()))
	}
	if d.obs != nil {
		if d.dirty || !d.hasValue {
			d.refresh()
		}
		return d.value
	}
	if !d.hasValue || d.epoch != d.s.dirtyEpoch {
		d.epoch = d.s.dirtyEpoch
		d.s.Untracked(d.recompute)
	}
	return d.value
}

// Eager reports whether the cell currently has subscribers and its own
// observer.
func (d *Derived[T]) Eager() bool {
	return d.obs != nil
}

// Subscribers returns the number of subscribed observers.
func (d *Derived[T]) Subscribers() int {
	return len(d.subs)
}

// refresh recomputes an eager cell synchronously. A queued flush entry for
// it is skipped afterwards.
func (d *Derived[T]) refresh() {
	d.obs.pending = false
	if err := d.s.run(d.obs); err != nil {
		d.s.logger.Error("derived refresh failed", "derived", d.String(), "error", err)
	}
}

func (d *Derived[T]) recompute() {
	// A write to a dependency during compute marks the cell dirty again.
	d.dirty = false
	d.computing = true
	var v T
	func() {
		ok := false
		defer func() {
			d.computing = false
			if !ok {
				d.dirty = true
			}
		}()
		v = d.compute()
		ok = true
	}()

	old, had := d.value, d.hasValue
	d.value, d.hasValue = v, true
	if had && !d.equals(old, v) {
		d.notify(d, v, old)
	}
}

func (d *Derived[T]) equals(a, b T) bool {
	if d.equal != nil {
		return d.equal(a, b)
	}
	return identical(a, b)
}

func (d *Derived[T]) activate() {
	obs := newObserver(d.s, kindDerived, func() error {
		d.recompute()
		return nil
	})
	obs.name = d.name
	obs.invalidate = func() { d.dirty = true }
	d.obs = obs

	// A lazy value may be stale; start over so the new subscriber is not
	// notified about a change it is reading right now.
	var zero T
	d.value, d.hasValue = zero, false
	d.refresh()
}

func (d *Derived[T]) release() {
	if len(d.subs) > 0 || d.obs == nil {
		return
	}
	obs := d.obs
	d.obs = nil
	obs.Dispose()

	var zero T
	d.value, d.hasValue = zero, false
	d.dirty = false
}

func (d *Derived[T]) subscribe(o *Observer) {
	if d.add(o) && len(d.subs) == 1 && d.obs == nil {
		d.activate()
	}
}

func (d *Derived[T]) unsubscribe(o *Observer) {
	if !d.remove(o) || len(d.subs) > 0 || d.obs == nil {
		return
	}
	if d.s.flushing {
		d.s.deferRelease(d)
		return
	}
	d.release()
}

func (d *Derived[T]) sourceDepth() int {
	if d.obs == nil {
		return 0
	}
	return d.obs.depth
}
