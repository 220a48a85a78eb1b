// Package broadcast provides a single-slot, latest-value broadcast.
//
// Subscribers never see a history: a subscriber that is slower than the
// publisher only receives the most recent value.
package broadcast

import "sync"

// Value holds the latest published value and fans it out to subscribers.
type Value[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   []*Subscription[T]
	closed bool
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Load returns the latest value.
func (v *Value[T]) Load() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Store replaces the value and notifies subscribers.
// Notification order matches Store order.
func (v *Value[T]) Store(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.value = value
	for _, sub := range v.subs {
		sub.send(value)
	}
}

// Subscribe returns a subscription primed with the current value.
func (v *Value[T]) Subscribe() *Subscription[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	sub := newSubscription[T](v)
	if v.closed {
		sub.close()
		return sub
	}
	sub.send(v.value)
	v.subs = append(v.subs, sub)
	return sub
}

// Close closes all subscriptions. Later stores are ignored.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for _, sub := range v.subs {
		sub.close()
	}
	v.subs = nil
}

func (v *Value[T]) remove(s *Subscription[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, sub := range v.subs {
		if sub == s {
			v.subs = append(v.subs[:i], v.subs[i+1:]...)
			s.close()
			return
		}
	}
}
