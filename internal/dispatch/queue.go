package dispatch

import (
	"context"
	"sync"
)

// Dispatcher schedules callbacks onto the single event goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Queue is a FIFO Dispatcher. Callbacks run only inside Drain, on whichever
// goroutine calls it, so a program that drains from one goroutine gets
// strictly serialized callbacks.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	ready   chan struct{}
	closed  bool
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Post enqueues fn. Posting to a closed queue is a no-op.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled whenever work has been posted since the last receive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain runs queued callbacks until the queue is empty, including callbacks
// posted by the callbacks themselves. It returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return ran
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Len reports how many callbacks are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run drains the queue every time work arrives until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.ready:
		}
	}
}

// Close drops pending work and rejects further posts.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	q.mu.Unlock()
}
