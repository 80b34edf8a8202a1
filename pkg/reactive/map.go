package reactive

import "maps"

// Map is an observable map. Every mutator copies the backing map.
type Map[K comparable, V any] struct {
	cell *Cell[map[K]V]
}

// NewMap creates a map holding a copy of initial.
func NewMap[K comparable, V any](s *Scheduler, initial map[K]V) *Map[K, V] {
	m := make(map[K]V, len(initial))
	maps.Copy(m, initial)
	return &Map[K, V]{cell: NewCell(s, m)}
}

// Cell returns the underlying cell.
func (m *Map[K, V]) Cell() *Cell[map[K]V] {
	return m.cell
}

// Get returns the map, tracking it. Callers must not modify it.
func (m *Map[K, V]) Get() map[K]V {
	return m.cell.Get()
}

// Peek returns the map without tracking.
func (m *Map[K, V]) Peek() map[K]V {
	return m.cell.Peek()
}

// Lookup returns the value for k, tracking the map.
func (m *Map[K, V]) Lookup(k K) (V, bool) {
	v, ok := m.cell.Get()[k]
	return v, ok
}

// Len returns the number of entries, tracking the map.
func (m *Map[K, V]) Len() int {
	return len(m.cell.Get())
}

// SetKey stores v under k.
func (m *Map[K, V]) SetKey(k K, v V) {
	next := maps.Clone(m.cell.Peek())
	if next == nil {
		next = make(map[K]V, 1)
	}
	next[k] = v
	m.cell.Set(next)
}

// Delete removes k. Deleting a missing key does nothing.
func (m *Map[K, V]) Delete(k K) {
	cur := m.cell.Peek()
	if _, ok := cur[k]; !ok {
		return
	}
	next := maps.Clone(cur)
	delete(next, k)
	m.cell.Set(next)
}
