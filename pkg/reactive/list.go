package reactive

// List is an observable slice. Every mutator copies the backing slice, so
// slices returned by Get and Peek are never modified afterwards.
type List[T any] struct {
	cell   *Cell[[]T]
	length *Derived[int]
}

// NewList creates a list holding items.
func NewList[T any](s *Scheduler, items ...T) *List[T] {
	l := &List[T]{cell: NewCell(s, cloneSlice(items, 0))}
	l.length = NewDerived(s, func() int { return len(l.cell.Get()) })
	return l
}

func cloneSlice[T any](items []T, extra int) []T {
	out := make([]T, len(items), len(items)+extra)
	copy(out, items)
	return out
}

// Cell returns the underlying cell.
func (l *List[T]) Cell() *Cell[[]T] {
	return l.cell
}

// Get returns the items, tracking the list.
func (l *List[T]) Get() []T {
	return l.cell.Get()
}

// Peek returns the items without tracking.
func (l *List[T]) Peek() []T {
	return l.cell.Peek()
}

// Len returns a derived cell holding the length. Observers that only read
// the length are not re-run when an item changes in place.
func (l *List[T]) Len() *Derived[int] {
	return l.length
}

// At returns item i, tracking the list. It panics when i is out of range.
func (l *List[T]) At(i int) T {
	return l.cell.Get()[i]
}

// Set replaces all items.
func (l *List[T]) Set(items []T) {
	l.cell.Set(cloneSlice(items, 0))
}

// Push appends items.
func (l *List[T]) Push(items ...T) {
	if len(items) == 0 {
		return
	}
	cur := l.cell.Peek()
	next := cloneSlice(cur, len(items))
	next = append(next, items...)
	l.cell.Set(next)
}

// SetAt replaces item i. It panics when i is out of range.
func (l *List[T]) SetAt(i int, v T) {
	cur := l.cell.Peek()
	_ = cur[i]
	next := cloneSlice(cur, 0)
	next[i] = v
	l.cell.Set(next)
}

// Splice removes deleteCount items starting at start, inserts items in
// their place and returns the removed items. start and deleteCount are
// clamped to the list bounds; a negative start counts from the end.
func (l *List[T]) Splice(start, deleteCount int, items ...T) []T {
	cur := l.cell.Peek()
	n := len(cur)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}
	if deleteCount == 0 && len(items) == 0 {
		return nil
	}

	removed := cloneSlice(cur[start:start+deleteCount], 0)
	next := make([]T, 0, n-deleteCount+len(items))
	next = append(next, cur[:start]...)
	next = append(next, items...)
	next = append(next, cur[start+deleteCount:]...)
	l.cell.Set(next)
	return removed
}
