package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

const (
	backoffStep = 50 * time.Millisecond
	backoffCap  = 500 * time.Millisecond
)

type Config struct {
	URL          string
	MaxReconnect int
	DialTimeout  time.Duration
}

// Client wraps the shared go-redis client used for sessions, read caches,
// rate-limit windows and event fan-out.
type Client struct {
	rdb   *goredis.Client
	log   *logger.Logger
	cfg   Config
	sleep func(context.Context, time.Duration) error
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	opts.MinRetryBackoff = backoffStep
	opts.MaxRetryBackoff = backoffCap
	if cfg.MaxReconnect <= 0 {
		cfg.MaxReconnect = 10
	}
	return &Client{
		rdb:   goredis.NewClient(opts),
		log:   log.With("service", "RedisClient"),
		cfg:   cfg,
		sleep: sleepCtx,
	}, nil
}

// Backoff is the delay before reconnect attempt n (1-based): linear in n,
// capped at 500ms.
func Backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * backoffStep
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// Connect pings until the server answers or MaxReconnect attempts fail.
func (c *Client) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxReconnect; attempt++ {
		if lastErr = c.rdb.Ping(ctx).Err(); lastErr == nil {
			c.log.Info("Redis connected", "attempt", attempt)
			return nil
		}
		c.log.Warn("Redis connect attempt failed", "attempt", attempt, "error", lastErr)
		if attempt == c.cfg.MaxReconnect {
			break
		}
		if err := c.sleep(ctx, Backoff(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("redis connect after %d attempts: %w", c.cfg.MaxReconnect, lastErr)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Raw() *goredis.Client { return c.rdb }

// Quit closes the pool.
func (c *Client) Quit() error {
	if err := c.rdb.Close(); err != nil {
		return err
	}
	c.log.Info("Redis connection closed")
	return nil
}

// GetJSON decodes key into dst. Reports false on a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Client) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
