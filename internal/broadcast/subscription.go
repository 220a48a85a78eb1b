package broadcast

import "sync"

// Subscription receives the latest values of a Value.
type Subscription[T any] struct {
	// C delivers values. It holds at most one pending value.
	C <-chan T
	// Done is closed when the subscription ends.
	Done <-chan struct{}

	ch     chan T
	doneCh chan struct{}
	once   sync.Once
	owner  *Value[T]
}

func newSubscription[T any](owner *Value[T]) *Subscription[T] {
	s := &Subscription[T]{
		ch:     make(chan T, 1),
		doneCh: make(chan struct{}),
		owner:  owner,
	}
	s.C = s.ch
	s.Done = s.doneCh
	return s
}

// send replaces any pending value (non-blocking).
// Called with the owner's lock held, so sends never interleave.
func (s *Subscription[T]) send(value T) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- value:
	default:
	}
}

func (s *Subscription[T]) close() {
	s.once.Do(func() { close(s.doneCh) })
}

// Cancel stops delivery to this subscription.
func (s *Subscription[T]) Cancel() {
	if s.owner != nil {
		s.owner.remove(s)
		return
	}
	s.close()
}
