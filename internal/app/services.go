package app

import (
	"github.com/ModularHallway100/harmony-backend/internal/data/cache"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/platform/providers"
	"github.com/ModularHallway100/harmony-backend/internal/platform/secretbox"
	"github.com/ModularHallway100/harmony-backend/internal/realtime/bus"
	"github.com/ModularHallway100/harmony-backend/internal/services"
)

type Services struct {
	Artists    services.ArtistService
	Keys       services.AIKeyManager
	Limiters   services.RateLimiterFactory
	Generation services.GenerationService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, redis *cache.Client, events bus.Bus, box *secretbox.Box) Services {
	log.Info("Wiring services...")

	artists := services.NewArtistService(log,
		reposet.ArtistDetail,
		reposet.ArtistImage,
		reposet.GenerationHistory,
		reposet.ArtistDocument,
		redis,
		events,
		services.ArtistServiceConfig{PopularCacheTTL: cfg.PopularCacheTTL},
	)

	keys := services.NewAIKeyManager(log, services.StaticKeySource(cfg.AIKeys()), box,
		services.WithKeyCacheTTL(cfg.AICacheTTL))

	limiters := services.NewRateLimiterFactory(cfg.RateLimitBackend, redis.Raw())
	log.Info("Rate limiter backend selected", "backend", cfg.RateLimitBackend)

	openai := providers.NewOpenAI(log, providers.Config{
		BaseURL:   cfg.OpenAIBaseURL,
		TextModel: cfg.OpenAITextModel,
		Timeout:   cfg.AITimeout,
	})
	gemini := providers.NewGemini(log, providers.Config{
		TextModel: cfg.GeminiTextModel,
		Timeout:   cfg.AITimeout,
	})
	generation := services.NewGenerationService(log, artists, keys, limiters,
		services.RateLimitConfig{Limit: cfg.AIRateLimit, Window: cfg.AIRateWindow},
		openai, gemini)

	return Services{
		Artists:    artists,
		Keys:       keys,
		Limiters:   limiters,
		Generation: generation,
	}
}
