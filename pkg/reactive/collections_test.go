package reactive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListMutators(t *testing.T) {
	s := NewScheduler()
	l := NewList(s, 1, 2)

	var lengths []int
	o := NewObserver(s, func() error {
		lengths = append(lengths, l.Len().Get())
		return nil
	})
	mustUpdate(t, o)

	l.Push(3)
	_ = s.Flush()

	before := l.Peek()
	l.SetAt(0, 9)
	_ = s.Flush()
	if before[0] != 1 {
		t.Errorf("SetAt modified a previously returned slice")
	}

	removed := l.Splice(1, 1, 7, 8)
	_ = s.Flush()

	if diff := cmp.Diff([]int{2}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{9, 7, 8, 3}, l.Peek()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	// SetAt keeps the length, so the length observer is not re-run.
	if diff := cmp.Diff([]int{2, 3, 4}, lengths); diff != "" {
		t.Errorf("lengths mismatch (-want +got):\n%s", diff)
	}
}

func TestListSpliceClamps(t *testing.T) {
	tests := []struct {
		name        string
		start, del  int
		insert      []string
		wantItems   []string
		wantRemoved []string
	}{
		{"negative start", -1, 5, nil, []string{"a", "b"}, []string{"c"}},
		{"past end", 10, 1, []string{"d"}, []string{"a", "b", "c", "d"}, []string{}},
		{"insert only", 1, 0, []string{"x"}, []string{"a", "x", "b", "c"}, []string{}},
		{"negative count", 0, -2, nil, []string{"a", "b", "c"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler()
			l := NewList(s, "a", "b", "c")
			removed := l.Splice(tt.start, tt.del, tt.insert...)
			if diff := cmp.Diff(tt.wantItems, l.Peek()); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRemoved, removed); diff != "" {
				t.Errorf("removed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListAtTracks(t *testing.T) {
	s := NewScheduler()
	l := NewList(s, "a", "b")
	var first string
	o := NewObserver(s, func() error {
		first = l.At(0)
		return nil
	})
	mustUpdate(t, o)

	l.SetAt(0, "z")
	_ = s.Flush()
	if first != "z" {
		t.Errorf("first = %q, want z", first)
	}
}

func TestMapMutators(t *testing.T) {
	s := NewScheduler()
	m := NewMap(s, map[string]int{"a": 1})

	runs := 0
	var got int
	o := NewObserver(s, func() error {
		runs++
		got, _ = m.Lookup("b")
		return nil
	})
	mustUpdate(t, o)

	m.SetKey("b", 2)
	_ = s.Flush()
	if got != 2 {
		t.Errorf("Lookup(b) = %d, want 2", got)
	}

	m.Delete("missing")
	if s.Pending() {
		t.Error("deleting a missing key should not notify")
	}

	m.Delete("a")
	_ = s.Flush()
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestValueVariants(t *testing.T) {
	s := NewScheduler()
	c := NewCell(s, 2)
	d := NewDerived(s, func() int { return c.Get() * 3 })

	tests := []struct {
		name     string
		v        Value[int]
		kind     Kind
		reactive bool
		want     int
	}{
		{"plain", Plain(5), KindPlain, false, 5},
		{"cell", FromCell(c), KindCell, true, 2},
		{"derived", FromDerived(d), KindDerived, true, 6},
		{"nil cell", FromCell[int](nil), KindPlain, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.v.Kind(), tt.kind)
			}
			if tt.v.IsReactive() != tt.reactive {
				t.Errorf("IsReactive() = %v, want %v", tt.v.IsReactive(), tt.reactive)
			}
			if got := tt.v.Peek(); got != tt.want {
				t.Errorf("Peek() = %d, want %d", got, tt.want)
			}
			if (tt.v.Source() != nil) != tt.reactive {
				t.Errorf("Source() presence mismatch")
			}
		})
	}
}

func TestValueGetTracks(t *testing.T) {
	s := NewScheduler()
	c := NewCell(s, "a")
	v := FromCell(c)
	var seen string
	o := NewObserver(s, func() error {
		seen = v.Get()
		return nil
	})
	mustUpdate(t, o)

	c.Set("b")
	_ = s.Flush()
	if seen != "b" {
		t.Errorf("seen = %q, want b", seen)
	}
}

func TestScopeDispose(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 0)

	root := NewScope(nil)
	child := NewScope(root)

	var order []string
	root.OnCleanup(func() { order = append(order, "root-1") })
	root.OnCleanup(func() { order = append(order, "root-2") })
	child.OnCleanup(func() { order = append(order, "child") })

	o := NewObserver(s, func() error {
		_ = a.Get()
		return nil
	}, InScope(child))
	mustUpdate(t, o)

	root.Dispose()
	root.Dispose()

	if diff := cmp.Diff([]string{"child", "root-2", "root-1"}, order); diff != "" {
		t.Errorf("cleanup order mismatch (-want +got):\n%s", diff)
	}
	if !o.Disposed() {
		t.Error("observer owned by child scope was not disposed")
	}
	if a.Subscribers() != 0 {
		t.Errorf("a still has %d subscribers", a.Subscribers())
	}
	if !child.IsDisposed() {
		t.Error("child scope not disposed")
	}

	ran := false
	root.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup on a disposed scope should run immediately")
	}
}

func TestIdentical(t *testing.T) {
	shared := []int{1, 2}
	m := map[string]int{}
	p := &struct{ n int }{1}
	fn := func() {}

	type pair struct{ a, b int }

	tests := []struct {
		name string
		eq   bool
		want bool
	}{
		{"same int", identical(1, 1), true},
		{"different string", identical("a", "b"), false},
		{"same slice", identical(shared, shared), true},
		{"resliced", identical(shared, shared[:1]), false},
		{"copied slice", identical(shared, append([]int(nil), shared...)), false},
		{"nil slices", identical([]int(nil), []int(nil)), true},
		{"same map", identical(m, m), true},
		{"different map", identical(m, map[string]int{}), false},
		{"same pointer", identical(p, p), true},
		{"func", identical(fn, fn), false},
		{"struct", identical(pair{1, 2}, pair{1, 2}), true},
		{"any holding slices", identical[any](shared, shared), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.eq != tt.want {
				t.Errorf("identical = %v, want %v", tt.eq, tt.want)
			}
		})
	}
}
