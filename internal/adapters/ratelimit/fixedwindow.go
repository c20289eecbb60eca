package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// FixedWindowLimiter admits up to limit requests per client key per window.
// With a Redis client it counts via INCR on a window-bucketed key so several
// replicas share one budget; otherwise (or when Redis errors) it falls back
// to per-key in-memory windows. State is not persisted across restarts.
type FixedWindowLimiter struct {
	prefix string
	limit  int
	window time.Duration
	rdb    *redis.Client

	// mu guards the window map only; each window carries its own lock so
	// counting for one client never blocks another.
	mu      sync.Mutex
	windows map[string]*window

	nowFn func() time.Time
}

func NewFixedWindowLimiter(prefix string, limit int, windowSize time.Duration, rdb *redis.Client) *FixedWindowLimiter {
	if windowSize <= 0 {
		windowSize = time.Minute
	}
	return &FixedWindowLimiter{
		prefix:  prefix,
		limit:   limit,
		window:  windowSize,
		rdb:     rdb,
		windows: make(map[string]*window, 32),
		nowFn:   time.Now,
	}
}

// Allow reports whether the request is admitted. A non-positive limit
// disables the limiter.
func (l *FixedWindowLimiter) Allow(ctx context.Context, clientKey string) bool {
	if l.limit <= 0 {
		return true
	}
	if l.rdb != nil {
		if allowed, ok := l.allowRedis(ctx, clientKey); ok {
			return allowed
		}
	}
	return l.allowInMem(clientKey)
}

func (l *FixedWindowLimiter) allowRedis(ctx context.Context, clientKey string) (allowed, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	bucket := l.nowFn().Unix() / int64(l.window/time.Second)
	key := fmt.Sprintf("%s:%s:%d", l.prefix, clientKey, bucket)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, false
	}
	if n == 1 {
		// A little slack past the window so the bucket outlives its use.
		_ = l.rdb.Expire(ctx, key, l.window+5*time.Second).Err()
	}
	return int(n) <= l.limit, true
}

func (l *FixedWindowLimiter) allowInMem(clientKey string) bool {
	l.mu.Lock()
	w, ok := l.windows[clientKey]
	if !ok {
		w = &window{}
		l.windows[clientKey] = w
	}
	l.mu.Unlock()

	now := l.nowFn()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.resetAt.IsZero() || now.After(w.resetAt) {
		w.count = 1
		w.resetAt = now.Add(l.window)
		return true
	}
	w.count++
	return w.count <= l.limit
}
