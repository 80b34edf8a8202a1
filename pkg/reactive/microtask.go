package reactive

// Microtasks runs tasks at the next microtask boundary: after the current
// synchronous stretch of work, before anything else is scheduled.
type Microtasks interface {
	Enqueue(task func())
}

// MicrotaskFunc adapts a function to Microtasks.
type MicrotaskFunc func(task func())

// Enqueue calls f(task).
func (f MicrotaskFunc) Enqueue(task func()) {
	f(task)
}

// TaskQueue is a FIFO Microtasks implementation that the host drains
// explicitly, usually at the end of each event it handles.
type TaskQueue struct {
	tasks []func()
}

// Enqueue appends a task.
func (q *TaskQueue) Enqueue(task func()) {
	if task == nil {
		return
	}
	q.tasks = append(q.tasks, task)
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// Drain runs queued tasks in order until the queue is empty, including
// tasks enqueued while draining. It returns the number of tasks run.
func (q *TaskQueue) Drain() int {
	n := 0
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		task()
		n++
	}
	q.tasks = nil
	return n
}
