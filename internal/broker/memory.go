package broker

import (
	"context"
	"errors"
	"sync"

	"github.com/localnerve/rentalmanager/internal/models"
)

// ErrClosed is returned by a closed broker
var ErrClosed = errors.New("broker closed")

// subscriberBuffer bounds how far a slow subscriber may fall behind. Events only signal
// "re-read the collection", so dropping extras while one is pending loses nothing.
const subscriberBuffer = 1

// MemoryBroker delivers events within one process
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
}

// NewMemoryBroker creates an in-process broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*memorySubscription]struct{})}
}

type memorySubscription struct {
	broker *MemoryBroker
	topic  string
	ch     chan Event
	once   sync.Once
}

func (s *memorySubscription) Events() <-chan Event {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.broker.remove(s)
	})
	return nil
}

// Publish implements Broker
func (b *MemoryBroker) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs[Topic(event.UserID, event.Collection)] {
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe implements Broker
func (b *MemoryBroker) Subscribe(_ context.Context, userID string, collection models.Collection) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	topic := Topic(userID, collection)
	sub := &memorySubscription{broker: b, topic: topic, ch: make(chan Event, subscriberBuffer)}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySubscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[sub.topic]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
		}
		if len(set) == 0 {
			delete(b.subs, sub.topic)
		}
	}
}

// Ping implements Broker
func (b *MemoryBroker) Ping(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Close closes every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(b.subs, topic)
	}
	return nil
}
