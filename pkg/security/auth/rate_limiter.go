package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// RedisRateLimiter is a fixed-window limiter backed by INCR + EXPIREAT.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	limit  int64
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, limit int64) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: "proup:ratelimit:",
		window: window,
		limit:  limit,
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(rl.window)
	resetAt := windowStart.Add(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, windowStart.Unix())

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, resetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limiter error: %w", err)
	}

	count := incr.Val()
	remaining := rl.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.limit,
		Limit:     rl.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
