// Package reactive implements a fine-grained reactive graph: mutable
// cells, derived cells and observers, driven by an explicit Scheduler.
//
// # Cells
//
// A Cell holds a value. Reading it with Get inside a running observer
// records a dependency; Peek never does. Set is a no-op when the new value
// is identical to the old one:
//
//	s := reactive.NewScheduler()
//	count := reactive.NewCell(s, 0)
//	count.Set(1)
//
// # Derived Cells
//
// A Derived caches a pure computation over other cells. While nothing
// observes it, it is lazy and recomputes on read when anything changed
// since its last computation. As soon as one observer subscribes it turns
// eager: it owns an internal observer that the scheduler recomputes in
// depth order, shallowest first, so no derived cell ever sees a stale
// upstream value.
//
//	doubled := reactive.NewDerived(s, func() int { return count.Get() * 2 })
//
// # Observers
//
// An Observer re-runs its function when any cell it read on the last run
// changes. Update runs it synchronously; writes schedule a flush on the
// scheduler's Microtasks so that all writes made in the same synchronous
// stretch are coalesced into one propagation pass.
//
//	o := reactive.NewObserver(s, func() error {
//	    fmt.Println(doubled.Get())
//	    return nil
//	})
//	_ = o.Update()
//	count.Set(2)
//	s.Tasks().Drain() // prints 4
//
// # Flushing
//
// A flush runs in rounds. Each round settles every queued derived cell
// before any plain observer runs. Observers that write cells cause further
// rounds; more than MaxRounds rounds aborts the flush with a *CycleError.
//
// # Thread Safety
//
// A Scheduler and everything created from it are single-threaded. Hosts
// must serialize access, typically by running all work on one goroutine.
package reactive
