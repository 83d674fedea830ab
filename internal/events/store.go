package events

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/resilience"
)

const defaultStreamMaxLen = 10000

// RedisStreamStore appends events to a capped Redis stream, one stream per topic.
type RedisStreamStore struct {
	Client *redis.Client
	Prefix string
	MaxLen int64
}

// Append implements EventStore.
func (s RedisStreamStore) Append(ctx context.Context, event Event) error {
	if s.Client == nil {
		return nil
	}
	maxLen := s.MaxLen
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return s.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.Stream(event.Topic),
		MaxLen: maxLen,
		Approx: true,
		Values: map[string]any{
			"id":           event.ID.String(),
			"aggregate_id": event.AggregateID,
			"payload":      string(event.Payload),
			"occurred_at":  event.OccurredAt.UnixMilli(),
		},
	}).Err()
}

// Stream returns the stream key used for topic.
func (s RedisStreamStore) Stream(topic string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "events"
	}
	return fmt.Sprintf("%s:%s", prefix, topic)
}

// GuardedStore fails fast with resilience.ErrOpenCircuit while the wrapped
// store is unhealthy.
type GuardedStore struct {
	Store   EventStore
	Breaker *resilience.Breaker
}

// Append implements EventStore.
func (s GuardedStore) Append(ctx context.Context, event Event) error {
	if s.Breaker == nil {
		return s.Store.Append(ctx, event)
	}
	return s.Breaker.Do(ctx, func(ctx context.Context) error {
		return s.Store.Append(ctx, event)
	})
}
