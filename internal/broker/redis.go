package broker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisBroker fans events out through Redis pub/sub so that every service instance
// watching a user collection hears about writes made on any other instance.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to Redis. addr may be host:port or a redis:// / rediss:// URL.
func NewRedisBroker(addr, password string, db int) (*RedisBroker, error) {
	var opts *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
		if password != "" {
			opts.Password = password
		}
		if db != 0 {
			opts.DB = db
		}
	} else {
		opts = &redis.Options{Addr: addr, Password: password, DB: db}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Default().WithError(err).WithField("addr", opts.Addr).Warn("redis ping failed on initialization")
	}
	return &RedisBroker{client: client}, nil
}

// Publish implements Broker
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, Topic(event.UserID, event.Collection), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) Events() <-chan Event {
	return s.ch
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

// Subscribe implements Broker. The subscription is confirmed by Redis before it is returned,
// so no event published afterwards is missed.
func (b *RedisBroker) Subscribe(ctx context.Context, userID string, collection models.Collection) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, Topic(userID, collection))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Topic(userID, collection), err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     make(chan Event, subscriberBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

func (s *redisSubscription) pump() {
	defer close(s.ch)
	log := logger.Default().WithField("component", "redis-broker")
	messages := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.WithError(err).WithField("channel", msg.Channel).Warn("dropping malformed event")
				continue
			}
			select {
			case s.ch <- event:
			default:
			}
		}
	}
}

// Ping implements Broker
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close implements Broker
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
