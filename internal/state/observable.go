// Package state holds the application state shared by the views: the
// current folder, its image list, the selection and the decoded metadata.
package state

import "sync"

// Observable is a value holder with publish-on-change semantics. Set
// notifies every subscriber synchronously on the calling goroutine.
// Deliveries are serialized, so the last value a subscriber receives is
// always the current one. A subscriber must not Set or Subscribe to the
// observable that is notifying it.
type Observable[T any] struct {
	notifyMu sync.Mutex
	mu       sync.Mutex
	value  T
	subs   []subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// NewObservable returns an observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial}
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set replaces the value and notifies subscribers in subscription order.
func (o *Observable[T]) Set(v T) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	o.value = v
	subs := make([]subscription[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Subscribe registers fn and immediately calls it with the current value.
// The returned function removes the subscription.
func (o *Observable[T]) Subscribe(fn func(T)) (cancel func()) {
	o.notifyMu.Lock()
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscription[T]{id: id, fn: fn})
	current := o.value
	o.mu.Unlock()

	fn(current)
	o.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (o *Observable[T]) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}
