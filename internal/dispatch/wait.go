package dispatch

import "context"

// DrainUntil drains q on the calling goroutine until done reports true or ctx
// ends. Callers must not be draining q elsewhere at the same time.
func DrainUntil(ctx context.Context, q *Queue, done func() bool) error {
	for {
		q.Drain()
		if done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.Ready():
		}
	}
}
