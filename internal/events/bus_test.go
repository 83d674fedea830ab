package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/events"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/resilience"
)

type captureStore struct {
	events []events.Event
	err    error
}

func (c *captureStore) Append(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

type captureNotifier struct {
	events []events.Event
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestEmitStoresAndNotifies(t *testing.T) {
	store := &captureStore{}
	notifier := &captureNotifier{}
	fixed := time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)
	bus := events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{notifier, nil},
		Now:       func() time.Time { return fixed },
	}

	event, err := bus.Emit(context.Background(), events.TopicCheckoutHandedOff, "cart-1", map[string]any{"totalCount": 3})
	require.NoError(t, err)
	require.Equal(t, events.TopicCheckoutHandedOff, event.Topic)
	require.Equal(t, fixed, event.OccurredAt)
	require.Len(t, store.events, 1)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.EqualValues(t, 3, decoded["totalCount"])
}

func TestEmitValidatesInput(t *testing.T) {
	var bus events.Bus
	_, err := bus.Emit(context.Background(), " ", "cart-1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicCartCleared, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicCartCleared, "cart-1", "not json")
	require.Error(t, err)

	var nilBus *events.Bus
	_, err = nilBus.Emit(context.Background(), events.TopicCartCleared, "cart-1", nil)
	require.Error(t, err)
}

func TestEmitStillNotifiesWhenStoreFails(t *testing.T) {
	store := &captureStore{err: errors.New("down")}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	_, err := bus.Emit(context.Background(), events.TopicCartCleared, "cart-1", nil)
	require.ErrorContains(t, err, "persist event")
	require.Len(t, notifier.events, 1)
	require.JSONEq(t, `{}`, string(notifier.events[0].Payload))
}

func TestGuardedStoreFailsFastWhenOpen(t *testing.T) {
	store := &captureStore{err: errors.New("down")}
	guarded := events.GuardedStore{
		Store:   store,
		Breaker: resilience.NewBreaker(resilience.BreakerConfig{MinRequests: 1, OpenFor: time.Hour}),
	}
	bus := events.Bus{Store: guarded}

	_, err := bus.Emit(context.Background(), events.TopicCartCleared, "cart-1", nil)
	require.ErrorContains(t, err, "down")
	_, err = bus.Emit(context.Background(), events.TopicCartCleared, "cart-1", nil)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Len(t, store.events, 1)
}

func TestRedisStreamStoreAppends(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := events.RedisStreamStore{Client: client, Prefix: "boutique:events"}
	bus := events.Bus{Store: store}
	_, err := bus.Emit(context.Background(), events.TopicNewsletterSubscribed, "a@example.com", map[string]string{"email": "a@example.com"})
	require.NoError(t, err)

	entries, err := client.XRange(context.Background(), store.Stream(events.TopicNewsletterSubscribed), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a@example.com", entries[0].Values["aggregate_id"])
	require.JSONEq(t, `{"email":"a@example.com"}`, entries[0].Values["payload"].(string))
}

func TestLogNotifierWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	bus := events.Bus{Notifiers: []events.Notifier{events.LogNotifier{Logger: zerolog.New(&buf)}}}
	_, err := bus.Emit(context.Background(), events.TopicCartCleared, "cart-9", map[string]int{"lines": 2})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"cart.cleared"`)
	require.Contains(t, buf.String(), `"payload":{"lines":2}`)
}
