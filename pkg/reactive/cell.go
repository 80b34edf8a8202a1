package reactive

// cellBase holds the ordered subscriber list shared by Cell and Derived.
type cellBase struct {
	s    *Scheduler
	id   uint64
	subs []*Observer
}

// add appends o unless it is already subscribed.
func (c *cellBase) add(o *Observer) bool {
	for _, existing := range c.subs {
		if existing == o {
			return false
		}
	}
	c.subs = append(c.subs, o)
	return true
}

// remove deletes o, keeping the order of the others.
func (c *cellBase) remove(o *Observer) bool {
	for i, existing := range c.subs {
		if existing == o {
			copy(c.subs[i:], c.subs[i+1:])
			c.subs[len(c.subs)-1] = nil
			c.subs = c.subs[:len(c.subs)-1]
			return true
		}
	}
	return false
}

// notify calls observe on a snapshot of the subscribers.
func (c *cellBase) notify(src Source, next, prev any) {
	if len(c.subs) == 0 {
		return
	}
	subs := make([]*Observer, len(c.subs))
	copy(subs, c.subs)
	for _, o := range subs {
		o.observe(src, next, prev)
	}
}

// Cell is a mutable value that observers can depend on.
type Cell[T any] struct {
	cellBase
	value T
	equal func(T, T) bool
}

// NewCell creates a cell holding initial.
func NewCell[T any](s *Scheduler, initial T) *Cell[T] {
	return &Cell[T]{
		cellBase: cellBase{s: s, id: s.newID()},
		value:    initial,
	}
}

// ID returns the cell's identifier.
func (c *Cell[T]) ID() uint64 {
	return c.id
}

// Get returns the value and records the cell as a dependency of the
// running observer, if any.
func (c *Cell[T]) Get() T {
	c.s.track(c)
	return c.value
}

// Peek returns the value without recording a dependency.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Set stores v. If v is identical to the current value nothing happens.
// Otherwise every subscriber is queued; re-computation waits for the next
// flush.
func (c *Cell[T]) Set(v T) {
	old := c.value
	if c.equals(old, v) {
		return
	}
	c.value = v
	c.s.markDirty()
	c.notify(c, v, old)
}

// Update sets the value to fn applied to the current one.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.Peek()))
}

// WithEquals replaces identity comparison with fn.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// Subscribers returns the number of subscribed observers.
func (c *Cell[T]) Subscribers() int {
	return len(c.subs)
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return identical(a, b)
}

func (c *Cell[T]) subscribe(o *Observer)   { c.add(o) }
func (c *Cell[T]) unsubscribe(o *Observer) { c.remove(o) }
func (c *Cell[T]) sourceDepth() int        { return 0 }
