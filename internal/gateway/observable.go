package gateway

import (
	"sync"

	"github.com/localnerve/rentalmanager/internal/models"
)

// Snapshot is the full content of a collection as last read, with its version
type Snapshot[T any] struct {
	Collection models.Collection `json:"collection"`
	Version    uint64            `json:"version"`
	Items      []T               `json:"items"`
}

// Observable holds a value and hands every new value to its subscribers.
// A subscriber gets the current value immediately, then each published value in order.
// Callbacks run while deliveries are serialised, so they must not subscribe or publish
// on the same observable.
type Observable[T any] struct {
	deliver sync.Mutex

	mu    sync.Mutex
	value T
	subs  map[uint64]func(T)
	next  uint64
}

// NewObservable creates an observable holding initial
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, subs: make(map[uint64]func(T))}
}

// Value returns the current value
func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// HasSubscribers reports whether anyone is subscribed
func (o *Observable[T]) HasSubscribers() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs) > 0
}

// Publish replaces the value and delivers it to every subscriber
func (o *Observable[T]) Publish(v T) {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	o.value = v
	fns := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscribe registers fn and calls it with the current value
func (o *Observable[T]) Subscribe(fn func(T)) *Subscription {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = fn
	current := o.value
	o.mu.Unlock()

	fn(current)

	return &Subscription{cancel: func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}}
}

// Subscription is a handle to an observable subscription
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops deliveries. It is safe to call more than once, and from a callback.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
