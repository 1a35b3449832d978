package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

func memberTopic(tripID string) string {
	return fmt.Sprintf("trip:%s:members", tripID)
}

// RedisBridge implements both sides of the change-notification channel over
// redis pub/sub: write slices publish ticks, session coordinators and the
// websocket endpoint subscribe to them.
type RedisBridge struct {
	client *redis.Client
}

func NewRedisBridge(client *redis.Client) *RedisBridge {
	return &RedisBridge{client}
}

var _ Notifier = (*RedisBridge)(nil)
var _ Bridge = (*RedisBridge)(nil)

func (b *RedisBridge) MembersChanged(ctx context.Context, tripID string) error {
	return b.client.Publish(ctx, memberTopic(tripID), "changed").Err()
}

func (b *RedisBridge) Subscribe(ctx context.Context, tripID string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, memberTopic(tripID))

	// The first frame redis sends back is the subscription confirmation.
	// Only after it arrives is the topic guaranteed to deliver changes.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub:  pubsub,
		changes: make(chan struct{}, 1),
	}

	go sub.forward()

	return sub, nil
}

type redisSubscription struct {
	pubsub  *redis.PubSub
	changes chan struct{}
	once    sync.Once
}

func (s *redisSubscription) forward() {
	defer close(s.changes)

	for range s.pubsub.Channel() {
		// Coalesce: a tick already pending makes further ones
		// redundant, the consumer re-fetches a full snapshot anyway.
		select {
		case s.changes <- struct{}{}:
		default:
		}
	}
}

func (s *redisSubscription) Changes() <-chan struct{} {
	return s.changes
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}
