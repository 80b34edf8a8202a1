package reactive

import (
	"container/heap"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Source is anything an observer can depend on: a Cell or a Derived.
type Source interface {
	// ID returns the source's identifier, unique within its scheduler.
	ID() uint64

	subscribe(o *Observer)
	unsubscribe(o *Observer)
	sourceDepth() int
}

func newSourceSet() mapset.Set[Source] {
	return mapset.NewThreadUnsafeSet[Source]()
}

type observerKind uint8

const (
	kindEffect observerKind = iota
	kindDerived
)

func (k observerKind) String() string {
	if k == kindDerived {
		return "derived"
	}
	return "effect"
}

// Observer re-runs a function whenever a source it read on its last run
// changes.
type Observer struct {
	s    *Scheduler
	id   uint64
	name string
	kind observerKind
	fn   func() error

	// refs are the sources read on the last completed run.
	refs mapset.Set[Source]

	// next collects the sources read by the run in progress.
	next mapset.Set[Source]

	depth   int
	version uint64

	// index is the position in the derived queue, -1 when not in it.
	index int

	pending  bool
	queued   bool
	running  bool
	disposed bool

	// run budget within one flush
	runs     int
	runFlush uint64

	willUpdate func(src Source, next, prev any)
	onUpdate   func()

	// invalidate is set for derived observers.
	invalidate func()
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WillUpdate sets a callback invoked the first time the observer is queued
// in an epoch, with the source that changed and its new and old values.
func WillUpdate(fn func(src Source, next, prev any)) ObserverOption {
	return func(o *Observer) {
		o.willUpdate = fn
	}
}

// OnUpdate sets a callback invoked after every successful run.
func OnUpdate(fn func()) ObserverOption {
	return func(o *Observer) {
		o.onUpdate = fn
	}
}

// Name sets the name used in logs and errors.
func Name(name string) ObserverOption {
	return func(o *Observer) {
		o.name = name
	}
}

// InScope registers the observer with sc, which disposes it.
func InScope(sc *Scope) ObserverOption {
	return func(o *Observer) {
		sc.Own(o)
	}
}

// NewObserver creates an observer for fn. It does not run until Update is
// called.
func NewObserver(s *Scheduler, fn func() error, opts ...ObserverOption) *Observer {
	o := newObserver(s, kindEffect, fn)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newObserver(s *Scheduler, kind observerKind, fn func() error) *Observer {
	return &Observer{
		s:     s,
		id:    s.newID(),
		kind:  kind,
		fn:    fn,
		refs:  newSourceSet(),
		index: -1,
	}
}

// ID returns the observer's identifier.
func (o *Observer) ID() uint64 {
	return o.id
}

// Depth returns one more than the deepest source read on the last run.
func (o *Observer) Depth() int {
	return o.depth
}

// Dependencies returns the number of sources read on the last run.
func (o *Observer) Dependencies() int {
	return o.refs.Cardinality()
}

// Pending reports whether the observer is waiting to re-run.
func (o *Observer) Pending() bool {
	return o.pending
}

// Disposed reports whether Dispose was called.
func (o *Observer) Disposed() bool {
	return o.disposed
}

func (o *Observer) String() string {
	if o.name != "" {
		return o.name
	}
	return fmt.Sprintf("%s#%d", o.kind, o.id)
}

// Update runs the observer now, tracking what it reads. It returns the
// function's error. A panic propagates after tracking state is restored.
func (o *Observer) Update() error {
	if o.disposed {
		return ErrDisposed
	}
	o.pending = false
	return o.exec()
}

func (o *Observer) exec() error {
	if err := o.s.run(o); err != nil {
		return err
	}
	if o.onUpdate != nil {
		o.onUpdate()
	}
	return nil
}

// Dispose unsubscribes the observer from every source it tracks. It is
// idempotent.
func (o *Observer) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true
	o.pending = false

	refs := o.refs
	o.refs = newSourceSet()
	refs.Each(func(src Source) bool {
		src.unsubscribe(o)
		return false
	})
}

// observe is called by a source that o depends on when its value changes.
func (o *Observer) observe(src Source, next, prev any) {
	if o.disposed {
		return
	}
	if o.invalidate != nil {
		o.invalidate()
	}
	if o.pending {
		return
	}

	first := o.version != o.s.nextVersion
	o.version = o.s.nextVersion
	o.pending = true
	if first && o.willUpdate != nil {
		o.s.Untracked(func() { o.willUpdate(src, next, prev) })
	}
	o.s.enqueue(o)
}

// commitRefs replaces refs with the sources read by the last run,
// unsubscribing from the ones no longer read.
func (o *Observer) commitRefs() {
	next := o.next
	o.next = nil
	if next == nil {
		return
	}

	if o.disposed {
		next.Each(func(src Source) bool {
			src.unsubscribe(o)
			return false
		})
		return
	}

	o.refs.Difference(next).Each(func(src Source) bool {
		src.unsubscribe(o)
		return false
	})
	o.refs = next

	depth := 0
	next.Each(func(src Source) bool {
		if d := src.sourceDepth() + 1; d > depth {
			depth = d
		}
		return false
	})
	if depth != o.depth {
		o.depth = depth
		if o.index >= 0 {
			heap.Fix(&o.s.derivedQ, o.index)
		}
	}
}
