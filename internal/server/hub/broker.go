package hub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Broker is the fan-out backend carrying canvas events between server
// replicas. The production implementation is Redis pub/sub; tests use an
// in-process fake.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription delivers raw event payloads until closed.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, channel)
	// Force the subscription onto the wire before we report success, so no
	// event published after this call is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	return &redisSubscription{pubsub: pubsub}, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
}

func (s *redisSubscription) Messages() <-chan []byte {
	if s.out == nil {
		s.out = make(chan []byte, 64)
		go func() {
			defer close(s.out)
			for msg := range s.pubsub.Channel() {
				s.out <- []byte(msg.Payload)
			}
		}()
	}
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
