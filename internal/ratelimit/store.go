package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// FixedWindow adapts a ulule limiter store to Allower. One ulule limiter is
// kept per distinct (window, max) rate.
type FixedWindow struct {
	store    limiter.Store
	mu       sync.Mutex
	limiters map[limiter.Rate]*limiter.Limiter
}

// NewMemoryLimiter returns a process-local fixed window limiter.
func NewMemoryLimiter(prefix string) *FixedWindow {
	return &FixedWindow{
		store: memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: time.Minute,
		}),
		limiters: make(map[limiter.Rate]*limiter.Limiter),
	}
}

// NewRedisLimiter returns a fixed window limiter shared through Redis.
func NewRedisLimiter(client *redis.Client, prefix string) (*FixedWindow, error) {
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: redis store: %w", err)
	}
	return &FixedWindow{store: store, limiters: make(map[limiter.Rate]*limiter.Limiter)}, nil
}

// Allow implements Allower.
func (f *FixedWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if f == nil || max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}
	lctx, err := f.limiter(window, max).Get(ctx, key)
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	return !lctx.Reached, int(lctx.Remaining), time.Unix(lctx.Reset, 0), nil
}

func (f *FixedWindow) limiter(window time.Duration, max int) *limiter.Limiter {
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[rate]; ok {
		return l
	}
	l := limiter.New(f.store, rate)
	f.limiters[rate] = l
	return l
}
