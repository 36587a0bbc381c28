package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"

	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

// RateLimiter is a sliding-window admission check for one provider.
// CanMakeRequest records the request when it admits it.
type RateLimiter interface {
	CanMakeRequest(ctx context.Context) (bool, error)
	RemainingRequests(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

type RateLimiterFactory interface {
	CreateRateLimiter(service string, limit int, window time.Duration) RateLimiter
}

// memoryLimiter keeps request timestamps in process. The check and the
// record happen under one lock.
type memoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	stamps []time.Time
}

type memoryLimiterFactory struct {
	now func() time.Time
}

func NewMemoryLimiterFactory(now func() time.Time) RateLimiterFactory {
	if now == nil {
		now = time.Now
	}
	return &memoryLimiterFactory{now: now}
}

func (f *memoryLimiterFactory) CreateRateLimiter(service string, limit int, window time.Duration) RateLimiter {
	return &memoryLimiter{limit: limit, window: window, now: f.now}
}

func (l *memoryLimiter) CanMakeRequest(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	if len(l.stamps) >= l.limit {
		return false, nil
	}
	l.stamps = append(l.stamps, now)
	return true, nil
}

func (l *memoryLimiter) RemainingRequests(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	if rem := l.limit - len(l.stamps); rem > 0 {
		return rem, nil
	}
	return 0, nil
}

func (l *memoryLimiter) Reset(ctx context.Context) error {
	l.mu.Lock()
	l.stamps = nil
	l.mu.Unlock()
	return nil
}

// pruneLocked drops timestamps strictly older than now-window.
func (l *memoryLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := l.stamps[:0]
	for _, ts := range l.stamps {
		if !ts.Before(cutoff) {
			keep = append(keep, ts)
		}
	}
	l.stamps = keep
}

// The sorted set holds one member per admitted request scored by its
// millisecond timestamp. Scores strictly below now-window are dropped.
var admitScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  return 1
end
return 0
`)

var remainingScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
return redis.call('ZCARD', key)
`)

type redisLimiter struct {
	rdb    *goredis.Client
	key    string
	limit  int
	window time.Duration
	now    func() time.Time
}

type redisLimiterFactory struct {
	rdb    *goredis.Client
	prefix string
	now    func() time.Time
}

// NewRedisLimiterFactory shares limiter state across processes through
// rdb. Keys are "<prefix>:<service>".
func NewRedisLimiterFactory(rdb *goredis.Client, prefix string, now func() time.Time) RateLimiterFactory {
	if strings.TrimSpace(prefix) == "" {
		prefix = "ratelimit"
	}
	if now == nil {
		now = time.Now
	}
	return &redisLimiterFactory{rdb: rdb, prefix: prefix, now: now}
}

func (f *redisLimiterFactory) CreateRateLimiter(service string, limit int, window time.Duration) RateLimiter {
	return &redisLimiter{
		rdb:    f.rdb,
		key:    fmt.Sprintf("%s:%s", f.prefix, normalizeService(service)),
		limit:  limit,
		window: window,
		now:    f.now,
	}
}

func (l *redisLimiter) CanMakeRequest(ctx context.Context) (bool, error) {
	now := l.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())
	admitted, err := admitScript.Run(ctx, l.rdb, []string{l.key}, now, l.window.Milliseconds(), l.limit, member).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return admitted == 1, nil
}

func (l *redisLimiter) RemainingRequests(ctx context.Context) (int, error) {
	used, err := remainingScript.Run(ctx, l.rdb, []string{l.key}, l.now().UnixMilli(), l.window.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("rate limit remaining: %w", err)
	}
	if rem := l.limit - used; rem > 0 {
		return rem, nil
	}
	return 0, nil
}

func (l *redisLimiter) Reset(ctx context.Context) error {
	return l.rdb.Del(ctx, l.key).Err()
}

// NewRateLimiterFactory picks the limiter backend by name. The redis
// backend needs a client; without one it falls back to memory.
func NewRateLimiterFactory(backend string, rdb *goredis.Client) RateLimiterFactory {
	if strings.EqualFold(strings.TrimSpace(backend), RateLimitBackendRedis) && rdb != nil {
		return NewRedisLimiterFactory(rdb, "harmony:ratelimit", nil)
	}
	return NewMemoryLimiterFactory(nil)
}
