package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter is a fixed-window limiter backed by Redis INCR with a TTL
// set on the first hit of each window.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: redisKeyPrefix,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if r.limit <= 0 {
		return Decision{Allowed: true}, nil
	}

	redisKey := r.prefix + key

	count, err := r.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, errors.Wrap(err, "rate limit incr")
	}

	if count == 1 {
		if err := r.rdb.PExpire(ctx, redisKey, r.window).Err(); err != nil {
			return Decision{}, errors.Wrap(err, "rate limit expire")
		}
	}

	ttl, err := r.rdb.PTTL(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, errors.Wrap(err, "rate limit ttl")
	}

	// A key without a TTL means the expire after the first INCR never landed.
	if ttl < 0 {
		if err := r.rdb.PExpire(ctx, redisKey, r.window).Err(); err != nil {
			return Decision{}, errors.Wrap(err, "rate limit expire")
		}
		ttl = r.window
	}

	return Decision{
		Allowed:   count <= int64(r.limit),
		Limit:     r.limit,
		Remaining: remaining(r.limit, count),
		ResetIn:   ttl,
	}, nil
}
