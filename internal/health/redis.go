package health

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisChecker probes an optional Redis client.
type RedisChecker struct {
	Client *redis.Client
}

// PingRedis implements Checker. A nil client reports ErrDisabled.
func (c RedisChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.Client == nil {
		return ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}
