package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/platform/secretbox"
)

const (
	ServiceOpenAI     = "openai"
	ServiceGemini     = "gemini"
	ServiceStability  = "stability"
	ServiceSuno       = "suno"
	ServiceElevenLabs = "elevenlabs"

	DefaultKeyCacheTTL = time.Hour

	minKeyLength = 20
	maxKeyLength = 100
)

var KnownAIServices = []string{ServiceOpenAI, ServiceGemini, ServiceStability, ServiceSuno, ServiceElevenLabs}

var placeholderKey = regexp.MustCompile(`(?i)your-.*-key|placeholder|demo|test`)

// KeySource resolves a provider name to its configured key.
type KeySource interface {
	LookupKey(service string) (string, bool)
}

// StaticKeySource serves keys loaded once from configuration.
type StaticKeySource map[string]string

func (s StaticKeySource) LookupKey(service string) (string, bool) {
	v, ok := s[service]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

type AIKeyManager interface {
	GetAPIKey(ctx context.Context, service string) (string, error)
	ValidateAPIKey(key, service string) bool
	CheckServiceHealth(ctx context.Context, service string) bool
	AllServiceStatuses(ctx context.Context) map[string]bool
}

type cachedKey struct {
	key       string
	fetchedAt time.Time
}

type aiKeyManager struct {
	log    *logger.Logger
	source KeySource
	box    *secretbox.Box
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cachedKey
}

type AIKeyManagerOption func(*aiKeyManager)

func WithKeyClock(now func() time.Time) AIKeyManagerOption {
	return func(m *aiKeyManager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithKeyCacheTTL(ttl time.Duration) AIKeyManagerOption {
	return func(m *aiKeyManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewAIKeyManager builds the read-through key cache. box decrypts values
// stored with the secretbox prefix; it may be nil when no sealed keys are
// configured.
func NewAIKeyManager(log *logger.Logger, source KeySource, box *secretbox.Box, opts ...AIKeyManagerOption) AIKeyManager {
	m := &aiKeyManager{
		log:     log.With("service", "AIKeyManager"),
		source:  source,
		box:     box,
		ttl:     DefaultKeyCacheTTL,
		now:     time.Now,
		entries: map[string]cachedKey{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetAPIKey returns the cached key while it is younger than the TTL and
// otherwise re-reads the source. Stale entries are overwritten, never
// evicted.
func (m *aiKeyManager) GetAPIKey(ctx context.Context, service string) (string, error) {
	const op = "GetAPIKey"
	service = normalizeService(service)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[service]; ok && now.Sub(e.fetchedAt) < m.ttl {
		return e.key, nil
	}

	raw, ok := m.source.LookupKey(service)
	if !ok {
		return "", apperrors.New(apperrors.KindNotFound, op, "no API key configured for "+service)
	}
	key := strings.TrimSpace(raw)
	if secretbox.IsSealed(key) {
		if m.box == nil {
			return "", apperrors.New(apperrors.KindConfiguration, op, "sealed key for "+service+" but no encryption key loaded")
		}
		plain, err := m.box.Open(key)
		if err != nil {
			m.log.Error("api key decrypt failed", "provider", service, "error", err)
			return "", apperrors.Wrap(apperrors.KindConfiguration, op, err)
		}
		key = plain
	}

	m.entries[service] = cachedKey{key: key, fetchedAt: now}
	return key, nil
}

// ValidateAPIKey is a structural check only; providers are never called.
func (m *aiKeyManager) ValidateAPIKey(key, service string) bool {
	return ValidateAPIKey(key, service)
}

func ValidateAPIKey(key, service string) bool {
	if len(key) < minKeyLength || len(key) > maxKeyLength {
		return false
	}
	return !placeholderKey.MatchString(key)
}

func (m *aiKeyManager) CheckServiceHealth(ctx context.Context, service string) bool {
	key, err := m.GetAPIKey(ctx, service)
	if err != nil {
		return false
	}
	return ValidateAPIKey(key, service)
}

func (m *aiKeyManager) AllServiceStatuses(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(KnownAIServices))
	for _, svc := range KnownAIServices {
		out[svc] = m.CheckServiceHealth(ctx, svc)
	}
	return out
}

func normalizeService(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

