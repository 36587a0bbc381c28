package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ModularHallway100/harmony-backend/internal/data/repos/testutil"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/secretbox"
)

type countingSource struct {
	mu    sync.Mutex
	keys  map[string]string
	reads int
}

func (s *countingSource) LookupKey(service string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	v, ok := s.keys[service]
	return v, ok
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

const goodKey = "0123456789abcdef0123456789abcdef01234567"

func TestAIKeyManagerCachesWithinTTL(t *testing.T) {
	src := &countingSource{keys: map[string]string{"gemini": goodKey}}
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	mgr := NewAIKeyManager(testutil.Logger(t), src, nil, WithKeyClock(clock.Now), WithKeyCacheTTL(time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key, err := mgr.GetAPIKey(ctx, "gemini")
		if err != nil || key != goodKey {
			t.Fatalf("GetAPIKey: key=%q err=%v", key, err)
		}
	}
	if src.reads != 1 {
		t.Fatalf("source reads within ttl: want=1 got=%d", src.reads)
	}

	clock.Advance(59 * time.Minute)
	if _, err := mgr.GetAPIKey(ctx, "GEMINI "); err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if src.reads != 1 {
		t.Fatalf("entry should still be fresh at 59m, reads=%d", src.reads)
	}

	clock.Advance(2 * time.Minute)
	if _, err := mgr.GetAPIKey(ctx, "gemini"); err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if src.reads != 2 {
		t.Fatalf("stale entry should re-read source, reads=%d", src.reads)
	}
}

func TestAIKeyManagerMissingKey(t *testing.T) {
	mgr := NewAIKeyManager(testutil.Logger(t), StaticKeySource{"openai": "   "}, nil)
	_, err := mgr.GetAPIKey(context.Background(), "openai")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mgr.CheckServiceHealth(context.Background(), "suno") {
		t.Fatalf("unconfigured service must be unhealthy")
	}
}

func TestAIKeyManagerDecryptsSealedKeys(t *testing.T) {
	box, err := secretbox.New(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("secretbox.New: %v", err)
	}
	sealed, err := box.Seal(goodKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	src := StaticKeySource{"openai": sealed, "gemini": sealed}

	mgr := NewAIKeyManager(testutil.Logger(t), src, box)
	key, err := mgr.GetAPIKey(context.Background(), "openai")
	if err != nil || key != goodKey {
		t.Fatalf("GetAPIKey: key=%q err=%v", key, err)
	}

	noBox := NewAIKeyManager(testutil.Logger(t), src, nil)
	if _, err := noBox.GetAPIKey(context.Background(), "gemini"); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("expected configuration error without box, got %v", err)
	}
}

func TestValidateAPIKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"your-api-key-here", false},
		{"YOUR-OPENAI-KEY-GOES-HERE-1234", false},
		{goodKey, true},
		{"sk-placeholder-000000000000000000", false},
		{"sk-DEMO-0000000000000000000000000", false},
		{"sk-test-0000000000000000000000000", false},
		{"short", false},
		{strings.Repeat("a", 101), false},
		{strings.Repeat("a", 100), true},
		{strings.Repeat("a", 20), true},
	}
	for _, tc := range cases {
		if got := ValidateAPIKey(tc.key, "openai"); got != tc.want {
			t.Fatalf("ValidateAPIKey(%q): want=%v got=%v", tc.key, tc.want, got)
		}
	}
}

func TestAllServiceStatuses(t *testing.T) {
	src := StaticKeySource{
		"openai": goodKey,
		"gemini": "your-gemini-key-0000000000000",
	}
	mgr := NewAIKeyManager(testutil.Logger(t), src, nil)
	statuses := mgr.AllServiceStatuses(context.Background())
	if len(statuses) != len(KnownAIServices) {
		t.Fatalf("expected %d services, got %d", len(KnownAIServices), len(statuses))
	}
	if !statuses["openai"] || statuses["gemini"] || statuses["elevenlabs"] {
		t.Fatalf("unexpected statuses: %v", statuses)
	}
}
