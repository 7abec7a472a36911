package authorization

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Info describes the state of a rate-limit window for one key.
type Info struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter is the interface the authorization chain's rate-limit check
// depends on; both implementations below satisfy it.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, Info, error)
}

// RedisRateLimiter implements a fixed 60-second window counter in Redis:
// the first event for a key starts the window (via EXPIRE); the window
// resets the instant the first event in the next minute arrives, matching
// §4.C's "sliding 60-second window... resets when the first event in the
// next minute arrives".
type RedisRateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	prefix   string
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, requests: requests, window: window, prefix: "relay:ratelimit:"}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, Info, error) {
	redisKey := l.prefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, Info{}, fmt.Errorf("rate limiter: increment %q: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, Info{}, fmt.Errorf("rate limiter: set expiry on %q: %w", redisKey, err)
		}
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}

	info := Info{Limit: l.requests, Remaining: maxInt(0, l.requests-int(count)), Reset: time.Now().Add(ttl)}
	return int(count) <= l.requests, info, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// InMemoryRateLimiter is a single-process fixed-window limiter used in
// tests and single-instance deployments that don't run Redis.
type InMemoryRateLimiter struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	windows  map[string]*windowState
}

type windowState struct {
	count      int
	windowEnds time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{requests: requests, window: window, windows: map[string]*windowState{}}
}

func (l *InMemoryRateLimiter) Allow(_ context.Context, key string) (bool, Info, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.windowEnds) {
		w = &windowState{count: 0, windowEnds: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++

	info := Info{Limit: l.requests, Remaining: maxInt(0, l.requests-w.count), Reset: w.windowEnds}
	return w.count <= l.requests, info, nil
}
