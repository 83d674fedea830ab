package newsletter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/newsletter"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/obs"
)

func TestRedisStoreDeduplicates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newsletter.RedisStore{Client: client, Prefix: "boutique:newsletter"}
	at := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	added, err := store.Add(ctx, "awa@example.com", at)
	require.NoError(t, err)
	require.True(t, added)
	added, err = store.Add(ctx, "awa@example.com", at.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, added)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, "2026-10-15T10:00:00Z", mr.HGet("boutique:newsletter:subscribed_at", "awa@example.com"))
}

func TestRedisStoreSurfacesErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := newsletter.RedisStore{Client: client}.Add(context.Background(), "a@example.com", time.Now())
	require.Error(t, err)
}

func TestSubscribeHandler(t *testing.T) {
	obs.MustRegisterDomainMetrics("boutique", prometheus.NewRegistry())
	store := newsletter.NewMemoryStore()
	svc, err := newsletter.NewService(newsletter.ServiceConfig{Store: store})
	require.NoError(t, err)
	h := newsletter.NewHandler(newsletter.HandlerConfig{Service: svc})

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Subscribe(rec, httptest.NewRequest(http.MethodPost, "/api/v1/newsletter/subscriptions", bytes.NewBufferString(body)))
		return rec
	}

	rec := post(`{"email":" Awa@Example.com "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data newsletter.Subscription `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "awa@example.com", resp.Data.Email)
	require.False(t, resp.Data.AlreadySubscribed)

	rec = post(`{"email":"awa@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Data.AlreadySubscribed)

	rec = post(`{"email":"not-an-email"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(`{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, float64(1), testutil.ToFloat64(obs.NewsletterSubscribers))
}
