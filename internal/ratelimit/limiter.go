// Package ratelimit counts form submissions per key inside a fixed window.
//
// Two stores are provided. MemoryLimiter keeps counters in process and is
// fine for a single instance. RedisLimiter keeps them in Redis with a TTL so
// every instance behind the load balancer shares the same budget.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetIn is how long until the current window closes.
	ResetIn time.Duration
}

// Limiter admits at most Limit hits per key per window. The hit that would
// exceed the limit is rejected; the first hit after the window closes starts
// a fresh count.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// New builds the limiter selected by cfg.Store. The Redis store needs a
// client; the memory store ignores it.
func New(cfg config.RateLimitConfig, rdb *redis.Client) (Limiter, error) {
	window := time.Duration(cfg.Window) * time.Second

	switch cfg.Store {
	case "", StoreMemory:
		return NewMemoryLimiter(cfg.Limit, window), nil
	case StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("rate limit store %q needs a redis client", cfg.Store)
		}
		return NewRedisLimiter(rdb, cfg.Limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.Store)
	}
}

func remaining(limit int, count int64) int {
	if r := int64(limit) - count; r > 0 {
		return int(r)
	}
	return 0
}
