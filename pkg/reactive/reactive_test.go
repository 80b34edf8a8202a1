package reactive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/livetree/pkg/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustUpdate(t *testing.T, o *Observer) {
	t.Helper()
	if err := o.Update(); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
}

func TestGlitchFreeChain(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)

	bRuns, cRuns := 0, 0
	b := NewDerived(s, func() int {
		bRuns++
		return a.Get() * 2
	})
	c := NewDerived(s, func() int {
		cRuns++
		return b.Get() + 1
	})

	var seen []int
	o := NewObserver(s, func() error {
		seen = append(seen, c.Get())
		return nil
	})
	mustUpdate(t, o)

	a.Set(2)
	if n := s.Tasks().Drain(); n != 1 {
		t.Errorf("expected 1 scheduled flush, got %d", n)
	}

	if bRuns != 2 {
		t.Errorf("b computed %d times, want 2", bRuns)
	}
	if cRuns != 2 {
		t.Errorf("c computed %d times, want 2", cRuns)
	}
	if diff := cmp.Diff([]int{3, 5}, seen); diff != "" {
		t.Errorf("observed values mismatch (-want +got):\n%s", diff)
	}
}

func TestLateDependencyRecomputesOnce(t *testing.T) {
	s := NewScheduler(WithLogger(quietLogger()))
	a := NewCell(s, 0)
	x := NewDerived(s, func() int { return a.Get() * 10 })

	yRuns := 0
	y := NewDerived(s, func() int {
		yRuns++
		if v := a.Get(); v > 0 {
			return v + x.Get()
		}
		return 0
	})

	// y activates before x, so it is popped first within the same depth.
	oy := NewObserver(s, func() error {
		_ = y.Get()
		return nil
	})
	mustUpdate(t, oy)
	ox := NewObserver(s, func() error {
		_ = x.Get()
		return nil
	})
	mustUpdate(t, ox)

	yRuns = 0
	a.Set(1)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	if got := y.Peek(); got != 11 {
		t.Errorf("y = %d, want 11", got)
	}
	if yRuns != 1 {
		t.Errorf("y computed %d times during flush, want 1", yRuns)
	}
}

func heapOrdered(q derivedQueue) bool {
	for i := range q {
		if q[i].index != i {
			return false
		}
		if i > 0 && q.Less(i, (i-1)/2) {
			return false
		}
	}
	return true
}

func TestDerivedQueueReordersOnDepthChange(t *testing.T) {
	s := NewScheduler(WithLogger(quietLogger()))
	a := NewCell(s, 1)
	d1 := NewDerived(s, func() int { return a.Get() + 1 })
	d2 := NewDerived(s, func() int { return d1.Get() + 1 })
	d3 := NewDerived(s, func() int { return d2.Get() + 1 })

	var x *Derived[int]
	ordered := true
	w := NewDerived(s, func() int {
		v := a.Get()
		if v > 1 {
			// x is still queued here; refreshing it moves it below d3.
			_ = x.Get()
			ordered = heapOrdered(s.derivedQ)
		}
		return v
	})
	x = NewDerived(s, func() int {
		if a.Get() > 1 {
			return d3.Get()
		}
		return 0
	})

	for _, read := range []func(){
		func() { _ = d3.Get() },
		func() { _ = w.Get() },
		func() { _ = x.Get() },
	} {
		mustUpdate(t, NewObserver(s, func() error {
			read()
			return nil
		}))
	}

	a.Set(2)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	if !ordered {
		t.Error("derived queue lost heap order after a queued cell changed depth")
	}
	if got := x.obs.Depth(); got != 4 {
		t.Errorf("x depth = %d, want 4", got)
	}
	if got := x.Peek(); got != 5 {
		t.Errorf("x = %d, want 5", got)
	}
	if got := s.derivedQ.Len(); got != 0 {
		t.Errorf("derived queue holds %d entries after flush", got)
	}
}

func TestDiamondRecomputesOnce(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)
	b := NewDerived(s, func() int { return a.Get() + 1 })
	c := NewDerived(s, func() int { return a.Get() * 2 })

	dRuns := 0
	d := NewDerived(s, func() int {
		dRuns++
		return b.Get() + c.Get()
	})

	var seen []int
	o := NewObserver(s, func() error {
		seen = append(seen, d.Get())
		return nil
	})
	mustUpdate(t, o)

	a.Set(5)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	if dRuns != 2 {
		t.Errorf("d computed %d times, want 2", dRuns)
	}
	if diff := cmp.Diff([]int{4, 16}, seen); diff != "" {
		t.Errorf("observed values mismatch (-want +got):\n%s", diff)
	}
}

func TestDepthOrdering(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)
	b := NewDerived(s, func() int { return a.Get() })
	c := NewDerived(s, func() int { return b.Get() })
	o := NewObserver(s, func() error {
		_ = c.Get()
		return nil
	})
	mustUpdate(t, o)

	if got := b.obs.Depth(); got != 1 {
		t.Errorf("b depth = %d, want 1", got)
	}
	if got := c.obs.Depth(); got != 2 {
		t.Errorf("c depth = %d, want 2", got)
	}
	if got := o.Depth(); got != 3 {
		t.Errorf("observer depth = %d, want 3", got)
	}
}

func TestNoRedundantWrites(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, "x")
	runs := 0
	o := NewObserver(s, func() error {
		runs++
		_ = a.Get()
		return nil
	})
	mustUpdate(t, o)

	a.Set("x")

	if o.Pending() {
		t.Error("observer should not be queued by an identical write")
	}
	if s.Pending() {
		t.Error("scheduler should have no pending work")
	}
	if s.Tasks().Len() != 0 {
		t.Errorf("expected no scheduled flush, got %d", s.Tasks().Len())
	}
	s.Tasks().Drain()
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestIdenticalSliceIsNoop(t *testing.T) {
	s := NewScheduler()
	items := []int{1, 2, 3}
	c := NewCell(s, items)

	c.Set(items)
	if s.Pending() {
		t.Error("same slice should be a no-op")
	}

	c.Set(append([]int(nil), items...))
	if !s.Pending() {
		t.Error("a copy is a different identity and must notify")
	}
}

func TestDependencyPruning(t *testing.T) {
	s := NewScheduler()
	useX := NewCell(s, true)
	x := NewCell(s, 1)
	y := NewCell(s, 10)

	runs := 0
	o := NewObserver(s, func() error {
		runs++
		if useX.Get() {
			_ = x.Get()
		} else {
			_ = y.Get()
		}
		return nil
	})
	mustUpdate(t, o)

	if got := o.Dependencies(); got != 2 {
		t.Errorf("dependencies = %d, want 2", got)
	}

	useX.Set(false)
	_ = s.Flush()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
	if x.Subscribers() != 0 {
		t.Errorf("x should have no subscribers, got %d", x.Subscribers())
	}

	x.Set(5)
	_ = s.Flush()
	if runs != 2 {
		t.Errorf("write to pruned dependency re-ran observer: runs = %d", runs)
	}

	y.Set(11)
	_ = s.Flush()
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
}

func TestCycleTermination(t *testing.T) {
	var reported []error
	s := NewScheduler(
		WithMaxRounds(10),
		WithLogger(quietLogger()),
		WithErrorHandler(func(o *Observer, err error) {
			if o == nil {
				reported = append(reported, err)
			}
		}),
	)

	x := NewCell(s, 0)
	y := NewCell(s, 0)
	dx := NewDerived(s, func() int { return x.Get() + 1 })
	dy := NewDerived(s, func() int { return y.Get() + 1 })

	e1 := NewObserver(s, func() error {
		y.Set(dx.Get())
		return nil
	})
	e2 := NewObserver(s, func() error {
		x.Set(dy.Get())
		return nil
	})
	mustUpdate(t, e1)
	mustUpdate(t, e2)

	err := s.Flush()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Flush() error = %v, want ErrCycleDetected", err)
	}

	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if ce.Rounds != 10 {
		t.Errorf("rounds = %d, want 10", ce.Rounds)
	}
	if len(ce.Stack) == 0 {
		t.Error("expected captured scheduling stack")
	}
	if len(reported) != 1 {
		t.Errorf("error handler saw %d cycles, want 1", len(reported))
	}

	if s.Pending() {
		t.Error("queues should be cleared after a cycle")
	}
	if got, want := dx.Peek(), x.Peek()+1; got != want {
		t.Errorf("dx = %d, want %d", got, want)
	}
	if got, want := dy.Peek(), y.Peek()+1; got != want {
		t.Errorf("dy = %d, want %d", got, want)
	}

	// Unrelated cells keep working.
	z := NewCell(s, 0)
	seen := 0
	oz := NewObserver(s, func() error {
		seen = z.Get()
		return nil
	})
	mustUpdate(t, oz)
	e1.Dispose()
	e2.Dispose()
	z.Set(7)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() after cycle error: %v", err)
	}
	if seen != 7 {
		t.Errorf("seen = %d, want 7", seen)
	}
}

func TestCycleWithinDerivedQueue(t *testing.T) {
	s := NewScheduler(WithMaxRounds(5), WithLogger(quietLogger()))
	x := NewCell(s, 0)
	d := NewDerived(s, func() int {
		v := x.Get()
		x.Set(v + 1)
		return v
	}).Named("counter")

	o := NewObserver(s, func() error {
		_ = d.Get()
		return nil
	})
	mustUpdate(t, o)

	err := s.Flush()
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("Flush() error = %v, want *CycleError", err)
	}
	if ce.Observer != "counter" {
		t.Errorf("cycle observer = %q, want counter", ce.Observer)
	}
}

func TestFlushIsolatesErrors(t *testing.T) {
	var handled []error
	s := NewScheduler(
		WithLogger(quietLogger()),
		WithErrorHandler(func(o *Observer, err error) {
			handled = append(handled, err)
		}),
	)
	a := NewCell(s, 0)
	errBoom := errors.New("boom")

	bad := NewObserver(s, func() error {
		if a.Get() > 0 {
			return errBoom
		}
		return nil
	}, Name("bad"))
	panicky := NewObserver(s, func() error {
		if a.Get() > 0 {
			panic("kaboom")
		}
		return nil
	})
	good := 0
	g := NewObserver(s, func() error {
		good = a.Get()
		return nil
	})
	mustUpdate(t, bad)
	mustUpdate(t, panicky)
	mustUpdate(t, g)

	a.Set(1)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() should not fail on observer errors: %v", err)
	}

	if good != 1 {
		t.Errorf("good observer did not run, got %d", good)
	}
	if len(handled) != 2 {
		t.Fatalf("handled %d errors, want 2", len(handled))
	}
	if !errors.Is(handled[0], errBoom) {
		t.Errorf("handled[0] = %v, want boom", handled[0])
	}
	if !errors.Is(handled[1], ErrObserverPanic) {
		t.Errorf("handled[1] = %v, want ErrObserverPanic", handled[1])
	}
	if panicky.Dependencies() != 1 {
		t.Errorf("panicking observer lost its dependencies: %d", panicky.Dependencies())
	}
}

func TestUpdateReturnsError(t *testing.T) {
	s := NewScheduler()
	errBoom := errors.New("boom")
	updates := 0
	o := NewObserver(s, func() error { return errBoom }, OnUpdate(func() { updates++ }))

	if err := o.Update(); !errors.Is(err, errBoom) {
		t.Errorf("Update() = %v, want boom", err)
	}
	if updates != 0 {
		t.Errorf("OnUpdate ran after a failed run")
	}
}

func TestUpdatePanicRestoresTracking(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)
	o := NewObserver(s, func() error {
		_ = a.Get()
		panic("render failed")
	})

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = o.Update()
	}()

	if s.active != nil {
		t.Error("active observer not restored after panic")
	}
	if a.Subscribers() != 1 {
		t.Errorf("dependency read before panic should be kept, got %d subscribers", a.Subscribers())
	}
}

func TestLazyEagerTransitions(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)
	runs := 0
	d := NewDerived(s, func() int {
		runs++
		return a.Get() * 10
	})

	if got := d.Peek(); got != 10 {
		t.Errorf("Peek() = %d, want 10", got)
	}
	_ = d.Get()
	if runs != 1 {
		t.Errorf("lazy read recomputed without changes: runs = %d", runs)
	}
	if d.Eager() {
		t.Error("unobserved derived should be lazy")
	}
	if a.Subscribers() != 0 {
		t.Error("lazy derived must not subscribe to its sources")
	}

	a.Set(2)
	if got := d.Peek(); got != 20 {
		t.Errorf("Peek() = %d, want 20", got)
	}

	o := NewObserver(s, func() error {
		_ = d.Get()
		return nil
	})
	mustUpdate(t, o)
	if !d.Eager() {
		t.Error("observed derived should be eager")
	}
	if a.Subscribers() != 1 {
		t.Errorf("eager derived should subscribe to a, got %d", a.Subscribers())
	}

	o.Dispose()
	if d.Eager() {
		t.Error("derived should return to lazy after its last subscriber leaves")
	}
	if d.hasValue {
		t.Error("release should drop the cached value")
	}
	if a.Subscribers() != 0 {
		t.Errorf("released derived still subscribed: %d", a.Subscribers())
	}
	if got := d.Peek(); got != 20 {
		t.Errorf("Peek() after release = %d, want 20", got)
	}
}

func TestEagerReadRefreshesSynchronously(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)
	runs := 0
	d := NewDerived(s, func() int {
		runs++
		return a.Get() + 100
	})
	o := NewObserver(s, func() error {
		_ = d.Get()
		return nil
	})
	mustUpdate(t, o)

	a.Set(2)
	if got := d.Peek(); got != 102 {
		t.Errorf("Peek() = %d, want 102", got)
	}
	_ = s.Flush()
	if runs != 2 {
		t.Errorf("derived recomputed %d times, want 2", runs)
	}
}

func TestReleaseDeferredUntilFlushEnds(t *testing.T) {
	s := NewScheduler()
	show := NewCell(s, true)
	a := NewCell(s, 1)
	d := NewDerived(s, func() int { return a.Get() })

	o := NewObserver(s, func() error {
		if show.Get() {
			_ = d.Get()
		}
		return nil
	})
	mustUpdate(t, o)

	var eagerDuring bool
	probe := NewObserver(s, func() error {
		_ = show.Get()
		eagerDuring = d.Eager()
		return nil
	})
	mustUpdate(t, probe)

	show.Set(false)
	_ = s.Flush()

	if !eagerDuring {
		t.Error("release should wait until the flush ends")
	}
	if d.Eager() {
		t.Error("derived should be lazy after the flush")
	}
}

func TestSelfReadPanics(t *testing.T) {
	s := NewScheduler()
	var d *Derived[int]
	d = NewDerived(s, func() int { return d.Get() + 1 })

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected error panic, got %v", r)
		}
		if !errors.Is(err, ErrSelfRead) {
			t.Errorf("panic = %v, want ErrSelfRead", err)
		}
		if d.computing {
			t.Error("computing flag not reset")
		}
	}()
	_ = d.Peek()
}

func TestBatchFlushesOnce(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 0)
	b := NewCell(s, 0)
	runs := 0
	o := NewObserver(s, func() error {
		runs++
		_ = a.Get() + b.Get()
		return nil
	})
	mustUpdate(t, o)

	err := s.Batch(func() {
		a.Set(1)
		_ = s.Batch(func() { b.Set(2) })
		if runs != 1 {
			t.Errorf("nested batch flushed early")
		}
	})
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if s.Tasks().Len() != 0 {
		t.Errorf("batch should not schedule a microtask, got %d", s.Tasks().Len())
	}
}

func TestWritesCoalesceIntoOneFlush(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 0)
	runs := 0
	o := NewObserver(s, func() error {
		runs++
		_ = a.Get()
		return nil
	})
	mustUpdate(t, o)

	a.Set(1)
	a.Set(2)
	a.Set(3)
	if s.Tasks().Len() != 1 {
		t.Errorf("scheduled %d flushes, want 1", s.Tasks().Len())
	}
	s.Tasks().Drain()
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestWillUpdateOncePerEpoch(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 0)
	var changes []string
	updates := 0
	o := NewObserver(s, func() error {
		_ = a.Get()
		return nil
	},
		WillUpdate(func(src Source, next, prev any) {
			changes = append(changes, fmt.Sprintf("%v->%v", prev, next))
		}),
		OnUpdate(func() { updates++ }),
	)
	mustUpdate(t, o)

	a.Set(1)
	a.Set(2)
	_ = s.Flush()
	a.Set(3)
	_ = s.Flush()

	if diff := cmp.Diff([]string{"0->1", "2->3"}, changes); diff != "" {
		t.Errorf("willUpdate calls mismatch (-want +got):\n%s", diff)
	}
	if updates != 3 {
		t.Errorf("onUpdate calls = %d, want 3", updates)
	}
}

func TestObserverWritesFoldIntoFlush(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 1)
	b := NewCell(s, 0)
	mirror := NewObserver(s, func() error {
		b.Set(a.Get() * 2)
		return nil
	})
	var seen []int
	reader := NewObserver(s, func() error {
		seen = append(seen, b.Get())
		return nil
	})
	mustUpdate(t, mirror)
	mustUpdate(t, reader)

	a.Set(5)
	s.Tasks().Drain()

	if diff := cmp.Diff([]int{2, 10}, seen); diff != "" {
		t.Errorf("seen mismatch (-want +got):\n%s", diff)
	}
	if s.Pending() {
		t.Error("flush should settle")
	}
}

func TestDispose(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 0)
	d := NewDerived(s, func() int { return a.Get() })
	runs := 0
	o := NewObserver(s, func() error {
		runs++
		_ = a.Get() + d.Get()
		return nil
	})
	mustUpdate(t, o)

	a.Set(1)
	o.Dispose()
	o.Dispose()
	_ = s.Flush()

	if runs != 1 {
		t.Errorf("disposed observer ran: runs = %d", runs)
	}
	if a.Subscribers() != 0 {
		t.Errorf("a still has %d subscribers", a.Subscribers())
	}
	if d.Subscribers() != 0 {
		t.Errorf("d still has %d subscribers", d.Subscribers())
	}
	if err := o.Update(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Update() after Dispose = %v, want ErrDisposed", err)
	}
}

func TestUntracked(t *testing.T) {
	s := NewScheduler()
	a := NewCell(s, 0)
	o := NewObserver(s, func() error {
		s.Untracked(func() { _ = a.Get() })
		return nil
	})
	mustUpdate(t, o)
	if a.Subscribers() != 0 {
		t.Error("untracked read subscribed")
	}
}

func TestCustomMicrotasks(t *testing.T) {
	var queued []func()
	s := NewScheduler(WithMicrotasks(MicrotaskFunc(func(task func()) {
		queued = append(queued, task)
	})))
	a := NewCell(s, 0)
	seen := 0
	o := NewObserver(s, func() error {
		seen = a.Get()
		return nil
	})
	mustUpdate(t, o)

	a.Set(4)
	if len(queued) != 1 {
		t.Fatalf("queued %d tasks, want 1", len(queued))
	}
	queued[0]()
	if seen != 4 {
		t.Errorf("seen = %d, want 4", seen)
	}
}

func TestTaskQueueDrainsNested(t *testing.T) {
	var q TaskQueue
	var order []int
	q.Enqueue(func() {
		order = append(order, 1)
		q.Enqueue(func() { order = append(order, 3) })
	})
	q.Enqueue(func() { order = append(order, 2) })
	q.Enqueue(nil)

	if n := q.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFlushMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	s := NewScheduler(WithMetrics(m))
	a := NewCell(s, 0)
	o := NewObserver(s, func() error {
		_ = a.Get()
		return nil
	})
	mustUpdate(t, o)
	a.Set(1)
	_ = s.Flush()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"livetree_reactive_flushes_total", "livetree_reactive_observer_runs_total"} {
		if !names[want] {
			t.Errorf("metric %s not recorded", want)
		}
	}
}
