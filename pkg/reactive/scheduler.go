package reactive

import (
	"container/heap"
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/livetree/pkg/telemetry"
)

// DefaultMaxRounds is the default number of propagation rounds a flush may
// run before it is aborted with a *CycleError.
const DefaultMaxRounds = 100

// Scheduler owns the propagation queues and version counters of one
// reactive graph. Graphs created from different schedulers are independent.
type Scheduler struct {
	maxRounds     int
	micro         Microtasks
	tasks         *TaskQueue
	logger        *slog.Logger
	metrics       *telemetry.Metrics
	tracer        *telemetry.Tracer
	onError       func(*Observer, error)
	captureStacks bool

	derivedQ  derivedQueue
	observerQ []*Observer

	currentVersion uint64
	nextVersion    uint64
	dirtyEpoch     uint64

	active     *Observer
	flushing   bool
	scheduled  bool
	batchDepth int
	flushID    uint64
	lastID     uint64

	// stack captured when the pending flush was scheduled
	stack []byte

	// derived cells whose last subscriber left during a flush
	released []releaser
}

type releaser interface {
	release()
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxRounds sets the round cap of one flush. Values below 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// WithMicrotasks sets the primitive used to schedule flushes.
func WithMicrotasks(m Microtasks) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.micro = m
		}
	}
}

// WithLogger sets the logger used for observer failures and cycles.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithTracer sets the span tracer used around flushes.
func WithTracer(t *telemetry.Tracer) Option {
	return func(s *Scheduler) {
		s.tracer = t
	}
}

// WithErrorHandler sets a function called for every observer failure and
// every aborted flush (with a nil observer) during asynchronous flushes.
func WithErrorHandler(fn func(*Observer, error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// WithStackCapture controls whether a stack trace is captured each time a
// flush is scheduled. The trace is attached to cycle errors.
func WithStackCapture(enabled bool) Option {
	return func(s *Scheduler) {
		s.captureStacks = enabled
	}
}

// NewScheduler creates a Scheduler. Without WithMicrotasks, flushes are
// queued on the scheduler's own TaskQueue, see Tasks.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		maxRounds:     DefaultMaxRounds,
		tasks:         &TaskQueue{},
		logger:        slog.Default(),
		captureStacks: true,
	}
	s.micro = s.tasks
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns the scheduler's default microtask queue.
func (s *Scheduler) Tasks() *TaskQueue {
	return s.tasks
}

// MaxRounds returns the round cap of one flush.
func (s *Scheduler) MaxRounds() int {
	return s.maxRounds
}

// Pending reports whether a flush has work to do.
func (s *Scheduler) Pending() bool {
	return s.nextVersion != s.currentVersion || s.derivedQ.Len() > 0 || len(s.observerQ) > 0
}

func (s *Scheduler) newID() uint64 {
	s.lastID++
	return s.lastID
}

// markDirty records a cell write.
func (s *Scheduler) markDirty() {
	s.dirtyEpoch++
	if s.nextVersion == s.currentVersion {
		s.nextVersion++
		s.wake()
	}
}

func (s *Scheduler) wake() {
	if s.flushing || s.batchDepth > 0 || s.scheduled {
		return
	}
	s.scheduled = true
	if s.captureStacks {
		s.stack = debug.Stack()
	}
	s.micro.Enqueue(s.runScheduled)
}

func (s *Scheduler) runScheduled() {
	s.scheduled = false
	// Cycle errors are already logged and reported by flush.
	_ = s.Flush()
}

func (s *Scheduler) enqueue(o *Observer) {
	if !o.queued {
		o.queued = true
		if o.kind == kindDerived {
			heap.Push(&s.derivedQ, o)
		} else {
			s.observerQ = append(s.observerQ, o)
		}
	}
	s.wake()
}

// track records src as a dependency of the running observer.
func (s *Scheduler) track(src Source) {
	o := s.active
	if o == nil || o.disposed {
		return
	}
	if o.next.Contains(src) {
		return
	}
	o.next.Add(src)
	if !o.refs.Contains(src) {
		src.subscribe(o)
	}
}

// run executes o's function with o as the active observer and commits the
// dependencies it read, even when the function panics.
func (s *Scheduler) run(o *Observer) error {
	prev := s.active
	s.active = o
	o.running = true
	o.next = newSourceSet()
	defer func() {
		s.active = prev
		o.running = false
		o.commitRefs()
	}()
	return o.fn()
}

// Untracked runs fn with no active observer, so reads record nothing.
func (s *Scheduler) Untracked(fn func()) {
	prev := s.active
	s.active = nil
	defer func() { s.active = prev }()
	fn()
}

// Batch runs fn and then flushes synchronously. Writes inside fn do not
// schedule a microtask. Nested batches flush once, when the outermost one
// returns.
func (s *Scheduler) Batch(fn func()) error {
	s.batchDepth++
	func() {
		defer func() {
			s.batchDepth--
			if r := recover(); r != nil {
				if s.batchDepth == 0 && s.Pending() {
					s.wake()
				}
				panic(r)
			}
		}()
		fn()
	}()
	if s.batchDepth > 0 {
		return nil
	}
	return s.Flush()
}

// Flush runs the propagation loop now if there is pending work. Called
// while a flush is already running it returns nil; the running flush picks
// up the work.
func (s *Scheduler) Flush() error {
	if s.flushing || !s.Pending() {
		return nil
	}
	return s.flush()
}

func (s *Scheduler) flush() (err error) {
	start := time.Now()
	_, span := s.tracer.Start(context.Background(), "reactive.flush")

	s.flushing = true
	s.flushID++
	stack := s.stack
	s.stack = nil
	rounds := 0

	defer func() {
		s.flushing = false
		s.currentVersion = s.nextVersion
		s.releaseDeferred()
		s.metrics.RecordFlush(rounds, time.Since(start), err)
		telemetry.End(span, err, attribute.Int("reactive.rounds", rounds))
	}()

	for {
		s.currentVersion = s.nextVersion
		if s.derivedQ.Len() == 0 && len(s.observerQ) == 0 {
			return nil
		}
		if rounds >= s.maxRounds {
			return s.abort(&CycleError{Rounds: rounds, Stack: stack})
		}
		rounds++

		if cycle := s.drainDerived(); cycle != nil {
			cycle.Stack = stack
			return s.abort(cycle)
		}
		s.drainObservers()
	}
}

// drainDerived recomputes queued derived cells, shallowest first, until
// the queue is empty.
func (s *Scheduler) drainDerived() *CycleError {
	for s.derivedQ.Len() > 0 {
		o := heap.Pop(&s.derivedQ).(*Observer)
		o.queued = false
		if !o.pending || o.disposed {
			continue
		}
		if o.runFlush != s.flushID {
			o.runFlush = s.flushID
			o.runs = 0
		}
		o.runs++
		if o.runs > s.maxRounds {
			return &CycleError{Rounds: s.maxRounds, Observer: o.String()}
		}
		s.runQueued(o)
	}
	return nil
}

// drainObservers runs the observers queued before this call, in FIFO order.
// Observers queued while draining wait for the next round.
func (s *Scheduler) drainObservers() {
	queue := s.observerQ
	s.observerQ = nil
	for _, o := range queue {
		o.queued = false
		if !o.pending || o.disposed {
			continue
		}
		s.runQueued(o)
	}
}

func (s *Scheduler) runQueued(o *Observer) {
	o.pending = false
	err := s.safeRun(o)
	s.metrics.RecordObserverRun(o.kind.String(), err)
	if err != nil {
		s.logger.Error("observer failed", "observer", o.String(), "error", err)
		if s.onError != nil {
			s.onError(o, err)
		}
	}
}

func (s *Scheduler) safeRun(o *Observer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(o.String(), r)
		}
	}()
	return o.exec()
}

// abort ends a flush that did not settle. Queued work is dropped; derived
// cells keep their dirty mark so the next read recomputes them.
func (s *Scheduler) abort(cycle *CycleError) error {
	s.logger.Error("cycle detected",
		"rounds", cycle.Rounds,
		"observer", cycle.Observer,
		"stack", string(cycle.Stack),
	)

	for _, o := range s.derivedQ {
		o.queued = false
		o.pending = false
		o.index = -1
	}
	for _, o := range s.observerQ {
		o.queued = false
		o.pending = false
	}
	s.derivedQ = nil
	s.observerQ = nil

	if s.onError != nil {
		s.onError(nil, cycle)
	}
	return cycle
}

func (s *Scheduler) deferRelease(r releaser) {
	s.released = append(s.released, r)
}

func (s *Scheduler) releaseDeferred() {
	for len(s.released) > 0 {
		r := s.released[0]
		s.released = s.released[1:]
		r.release()
	}
	s.released = nil
}

// derivedQueue is a min-heap of derived observers ordered by depth, then
// by creation order.
type derivedQueue []*Observer

func (q derivedQueue) Len() int { return len(q) }

func (q derivedQueue) Less(i, j int) bool {
	if q[i].depth != q[j].depth {
		return q[i].depth < q[j].depth
	}
	return q[i].id < q[j].id
}

func (q derivedQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *derivedQueue) Push(x any) {
	o := x.(*Observer)
	o.index = len(*q)
	*q = append(*q, o)
}

func (q *derivedQueue) Pop() any {
	old := *q
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	o.index = -1
	*q = old[:n-1]
	return o
}
