package account

import (
	"sync"

	"acctview/internal/dispatch"
)

// PendingOperation tracks an asynchronous framework call. It finishes once,
// on the dispatcher, with an optional error.
type PendingOperation struct {
	dispatcher dispatch.Dispatcher

	mu             sync.Mutex
	finished       bool
	err            error
	done           chan struct{}
	finishedSignal Signal[*PendingOperation]
}

func NewPendingOperation(d dispatch.Dispatcher) *PendingOperation {
	return &PendingOperation{dispatcher: d, done: make(chan struct{})}
}

// FinishedOperation returns an operation that has already completed with err.
func FinishedOperation(d dispatch.Dispatcher, err error) *PendingOperation {
	op := NewPendingOperation(d)
	op.Finish(err)
	return op
}

// Finish completes the operation and notifies handlers. Later calls are
// ignored. Must run on the dispatcher goroutine.
func (op *PendingOperation) Finish(err error) {
	op.mu.Lock()
	if op.finished {
		op.mu.Unlock()
		return
	}
	op.finished = true
	op.err = err
	close(op.done)
	op.mu.Unlock()

	op.finishedSignal.Emit(op)
}

// OnFinished registers fn for completion. If the operation is already
// finished, fn runs on the next dispatcher turn unless disconnected first.
func (op *PendingOperation) OnFinished(fn func(*PendingOperation)) *Subscription {
	op.mu.Lock()
	finished := op.finished
	op.mu.Unlock()

	if !finished {
		return op.finishedSignal.Connect(fn)
	}

	sub := &Subscription{active: true}
	op.dispatcher.Post(func() {
		if !sub.Active() {
			return
		}
		sub.Disconnect()
		fn(op)
	})
	return sub
}

func (op *PendingOperation) IsFinished() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.finished
}

func (op *PendingOperation) IsError() bool {
	return op.Err() != nil
}

func (op *PendingOperation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.err
}

// Done is closed when the operation finishes.
func (op *PendingOperation) Done() <-chan struct{} {
	return op.done
}
