// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cimillas/eventhub/internal/clock"
)

const keyPrefix = "ratelimit:"

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows at most limit hits per key in each window. Windows are
// aligned to the Unix epoch, so every key shares the same boundaries.
type Limiter struct {
	redis  redis.Cmdable
	scope  string
	limit  int
	window time.Duration
	clock  clock.Clock
}

func New(client redis.Cmdable, scope string, limit int, window time.Duration, clk clock.Clock) *Limiter {
	if window < time.Second {
		window = time.Second
	}
	return &Limiter{
		redis:  client,
		scope:  scope,
		limit:  limit,
		window: window,
		clock:  clk,
	}
}

func (l *Limiter) Scope() string { return l.scope }

// Allow records one hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.clock.Now()
	windowSecs := int64(l.window / time.Second)
	slot := now.Unix() / windowSecs
	redisKey := fmt.Sprintf("%s%s:%s:%d", keyPrefix, l.scope, key, slot)

	n, err := l.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.redis.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	if n > int64(l.limit) {
		windowEnd := time.Unix((slot+1)*windowSecs, 0)
		return Decision{Allowed: false, RetryAfter: windowEnd.Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - int(n)}, nil
}
