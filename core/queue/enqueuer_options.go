package queue

import "time"

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithDefaultQueue sets the queue used when Enqueue gets no WithQueue.
func WithDefaultQueue(name string) EnqueuerOption {
	return func(e *Enqueuer) {
		if name != "" {
			e.defaultQueue = name
		}
	}
}

// WithDefaultPriority sets the priority used when Enqueue gets no WithPriority.
func WithDefaultPriority(p Priority) EnqueuerOption {
	return func(e *Enqueuer) {
		if p.Valid() {
			e.defaultPriority = p
		}
	}
}

// WithDefaultMaxRetries sets how many attempts a task gets before it is dead-lettered.
func WithDefaultMaxRetries(n int) EnqueuerOption {
	return func(e *Enqueuer) {
		if n > 0 && n <= 127 {
			e.defaultMaxRetries = int8(n)
		}
	}
}

// WithEnqueuerClock overrides the time source for CreatedAt and ScheduledAt.
func WithEnqueuerClock(now func() time.Time) EnqueuerOption {
	return func(e *Enqueuer) {
		if now != nil {
			e.now = now
		}
	}
}

type enqueueOptions struct {
	queue       string
	priority    Priority
	maxRetries  int8
	taskName    string
	delay       time.Duration
	scheduledAt *time.Time
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

// WithQueue routes the task to a queue.
func WithQueue(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.queue = name
		}
	}
}

// WithPriority sets the task priority.
func WithPriority(p Priority) EnqueueOption {
	return func(o *enqueueOptions) {
		o.priority = p
	}
}

// WithMaxRetries sets the number of attempts for this task.
func WithMaxRetries(n int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithTaskName overrides the name inferred from the payload type.
func WithTaskName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		o.taskName = name
	}
}

// WithDelay postpones the task.
func WithDelay(d time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		o.delay = d
	}
}

// WithScheduledAt runs the task no earlier than at.
func WithScheduledAt(at time.Time) EnqueueOption {
	return func(o *enqueueOptions) {
		o.scheduledAt = &at
	}
}
