package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter allows Limit hits per key per Window using INCR + EXPIRE.
type FixedWindowLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewFixedWindowLimiter creates a limiter storing counters under prefix.
func NewFixedWindowLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *FixedWindowLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", l.prefix, k)
}

// Allow counts a hit for k and reports whether the window still has budget.
func (l *FixedWindowLimiter) Allow(ctx context.Context, k string) (bool, int, error) {
	key := l.key(k)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}
