package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter — фиксированное окно на INCR, общее для всех реплик.
type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(c *redis.Client) *RateLimiter {
	return &RateLimiter{c: c}
}

type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// Allow делает INCR по ключу; TTL ставится только при открытии окна, чтобы
// повторные попытки его не продлевали.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (Decision, error) {
	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, errors.Wrap(err, "redis ratelimit")
	}

	left := ttl.Val()
	if left < 0 {
		if err := rl.c.PExpire(ctx, key, window).Err(); err != nil {
			return Decision{}, errors.Wrap(err, "redis ratelimit expire")
		}
		left = window
	}

	n := incr.Val()
	d := Decision{Allowed: n <= limit, Count: n}
	if !d.Allowed {
		d.RetryAfter = left
	}
	return d, nil
}

func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return errors.Wrap(rl.c.Del(ctx, key).Err(), "redis ratelimit reset")
}
