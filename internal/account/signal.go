package account

import "sync"

// Subscription is the handle returned by Signal.Connect.
type Subscription struct {
	mu     sync.Mutex
	active bool
	detach func()
}

// Disconnect stops delivery. Safe to call more than once and on nil.
func (s *Subscription) Disconnect() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Active reports whether the subscription still receives emissions.
func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

type slot[T any] struct {
	sub *Subscription
	fn  func(T)
}

// Signal is a typed notification with any number of connected handlers.
// Handlers run synchronously inside Emit, in connection order.
type Signal[T any] struct {
	mu    sync.Mutex
	slots []*slot[T]
}

func (s *Signal[T]) Connect(fn func(T)) *Subscription {
	sl := &slot[T]{fn: fn}
	sub := &Subscription{active: true}
	sub.detach = func() { s.remove(sl) }
	sl.sub = sub

	s.mu.Lock()
	s.slots = append(s.slots, sl)
	s.mu.Unlock()
	return sub
}

func (s *Signal[T]) remove(target *slot[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl == target {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}

// Emit calls every connected handler. Handlers may connect or disconnect
// during emission; a handler disconnected mid-emission is skipped.
func (s *Signal[T]) Emit(value T) {
	s.mu.Lock()
	snapshot := make([]*slot[T], len(s.slots))
	copy(snapshot, s.slots)
	s.mu.Unlock()

	for _, sl := range snapshot {
		if !sl.sub.Active() {
			continue
		}
		sl.fn(value)
	}
}

// Subscribers returns the number of connected handlers.
func (s *Signal[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
