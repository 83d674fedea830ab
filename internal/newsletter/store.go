package newsletter

import (
	"context"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Store keeps the set of subscribed addresses.
type Store interface {
	// Add records email and reports whether it was newly added.
	Add(ctx context.Context, email string, at time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// RedisStore keeps subscribers in a Redis set with a companion hash holding
// the subscription time of each address.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func (s RedisStore) key(suffix string) string {
	prefix := strings.TrimSpace(s.Prefix)
	if prefix == "" {
		prefix = "newsletter"
	}
	return prefix + ":" + suffix
}

// Add implements Store.
func (s RedisStore) Add(ctx context.Context, email string, at time.Time) (bool, error) {
	added, err := s.Client.SAdd(ctx, s.key("subscribers"), email).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}
	if err := s.Client.HSet(ctx, s.key("subscribed_at"), email, at.UTC().Format(time.RFC3339)).Err(); err != nil {
		return true, err
	}
	return true, nil
}

// Count implements Store.
func (s RedisStore) Count(ctx context.Context) (int64, error) {
	return s.Client.SCard(ctx, s.key("subscribers")).Result()
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	subs map[string]time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]time.Time)}
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, email string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[email]; ok {
		return false, nil
	}
	m.subs[email] = at.UTC()
	return true, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.subs)), nil
}
