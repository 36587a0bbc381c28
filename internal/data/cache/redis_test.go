package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

func TestBackoffIsLinearAndCapped(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, Backoff(1))
	assert.Equal(t, 250*time.Millisecond, Backoff(5))
	assert.Equal(t, 500*time.Millisecond, Backoff(10))
	assert.Equal(t, 500*time.Millisecond, Backoff(42))
}

func TestConnectAndJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(logger.Nop(), Config{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Quit() })

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Ping(ctx))

	var out []string
	hit, err := c.GetJSON(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "k", []string{"a", "b"}, time.Minute))
	hit, err = c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, out)

	mr.FastForward(2 * time.Minute)
	hit, err = c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestConnectGivesUpAfterMaxAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	c, err := New(logger.Nop(), Config{URL: "redis://" + addr, MaxReconnect: 3, DialTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Quit() })

	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	err = c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, waits)
}
