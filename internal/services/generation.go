package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/platform/providers"
)

type GenerateCommand struct {
	UserID     uuid.UUID              `json:"-"`
	ArtistID   *uuid.UUID             `json:"artistId,omitempty"`
	Service    string                 `json:"service" binding:"required"`
	Type       types.GenerationType   `json:"generationType" binding:"required"`
	Prompt     string                 `json:"prompt" binding:"required"`
	Model      string                 `json:"model,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type GenerationOutcome struct {
	Record      *types.GenerationHistory `json:"record"`
	Image       *types.ArtistImage       `json:"image,omitempty"`
	MirrorStale bool                     `json:"mirrorStale"`
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type GenerationService interface {
	Generate(ctx context.Context, cmd GenerateCommand) (*GenerationOutcome, error)
}

type generationService struct {
	log       *logger.Logger
	artists   ArtistService
	keys      AIKeyManager
	limiters  RateLimiterFactory
	limitCfg  RateLimitConfig
	providers map[string]providers.Provider

	mu     sync.Mutex
	perSvc map[string]RateLimiter
}

func NewGenerationService(
	log *logger.Logger,
	artists ArtistService,
	keys AIKeyManager,
	limiters RateLimiterFactory,
	limitCfg RateLimitConfig,
	provs ...providers.Provider,
) GenerationService {
	if limitCfg.Limit <= 0 {
		limitCfg.Limit = DefaultRateLimit
	}
	if limitCfg.Window <= 0 {
		limitCfg.Window = DefaultRateWindow
	}
	byName := make(map[string]providers.Provider, len(provs))
	for _, p := range provs {
		byName[p.Name()] = p
	}
	return &generationService{
		log:       log.With("service", "GenerationService"),
		artists:   artists,
		keys:      keys,
		limiters:  limiters,
		limitCfg:  limitCfg,
		providers: byName,
		perSvc:    map[string]RateLimiter{},
	}
}

// Generate runs one provider call end to end: rate limit, key, pending
// ledger row, provider, terminal ledger update. The ledger row is marked
// failed before a provider error is returned.
func (s *generationService) Generate(ctx context.Context, cmd GenerateCommand) (*GenerationOutcome, error) {
	const op = "Generate"
	service := normalizeService(cmd.Service)

	provider, ok := s.providers[service]
	if !ok {
		return nil, apperrors.New(apperrors.KindInvalidArgument, op, "no provider registered for "+service)
	}
	if !provider.Supports(cmd.Type) {
		return nil, apperrors.New(apperrors.KindInvalidArgument, op, service+" cannot generate "+string(cmd.Type))
	}
	if strings.TrimSpace(cmd.Prompt) == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, op, "prompt required")
	}

	allowed, err := s.limiter(service).CanMakeRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if !allowed {
		return nil, apperrors.New(apperrors.KindRateLimited, op, "rate limit exceeded for "+service)
	}

	key, err := s.keys.GetAPIKey(ctx, service)
	if err != nil {
		return nil, err
	}
	if !s.keys.ValidateAPIKey(key, service) {
		return nil, apperrors.New(apperrors.KindInvalidKeyFormat, op, "configured key for "+service+" failed validation")
	}

	params, err := json.Marshal(cmd.Parameters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, op, err)
	}
	pending, err := s.artists.AddHistory(ctx, types.HistoryInput{
		UserID:         cmd.UserID,
		ArtistID:       cmd.ArtistID,
		GenerationType: cmd.Type,
		OriginalPrompt: cmd.Prompt,
		Parameters:     datatypes.JSON(params),
		ServiceUsed:    service,
		Status:         types.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	recordID := pending.Record.ID

	result, genErr := provider.Generate(ctx, key, providers.Request{
		Type:       cmd.Type,
		Prompt:     cmd.Prompt,
		Model:      cmd.Model,
		Parameters: cmd.Parameters,
	})
	if genErr != nil {
		s.log.Warn("generation failed", "provider", service, "history_id", recordID, "error", genErr)
		failed := types.StatusFailed
		msg := genErr.Error()
		// The caller's context may be what failed; the ledger still needs
		// its terminal state.
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := s.artists.UpdateHistory(markCtx, recordID, types.HistoryPatch{Status: &failed, ErrorMessage: &msg}); err != nil {
			s.log.Error("marking generation failed did not persist", "history_id", recordID, "error", err)
		}
		return nil, fmt.Errorf("generate via %s: %w", service, genErr)
	}

	data, err := json.Marshal(result.Data)
	if err != nil {
		return nil, fmt.Errorf("encode generation result: %w", err)
	}
	succeeded := types.StatusSucceeded
	resultJSON := datatypes.JSON(data)
	patch := types.HistoryPatch{Status: &succeeded, ResultData: &resultJSON}
	if result.RefinedPrompt != "" {
		patch.RefinedPrompt = &result.RefinedPrompt
	}
	done, err := s.artists.UpdateHistory(ctx, recordID, patch)
	if err != nil {
		return nil, err
	}
	if done == nil {
		return nil, apperrors.New(apperrors.KindNotFound, op, "generation record "+recordID.String()+" vanished")
	}

	out := &GenerationOutcome{Record: done.Record, MirrorStale: done.MirrorStale}
	if cmd.Type == types.GenerationImage && cmd.ArtistID != nil {
		if url, _ := result.Data["imageUrl"].(string); url != "" {
			img, err := s.artists.AddImage(ctx, *cmd.ArtistID, types.ImageInput{
				ImageURL:         url,
				GenerationPrompt: cmd.Prompt,
				ModelUsed:        result.Model,
			})
			if err != nil {
				s.log.Error("storing generated image failed", "artist_id", *cmd.ArtistID, "error", err)
				return nil, err
			}
			out.Image = img.Image
			out.MirrorStale = out.MirrorStale || img.MirrorStale
		}
	}
	s.log.Info("generation succeeded", "provider", service, "history_id", recordID, "type", cmd.Type)
	return out, nil
}

func (s *generationService) limiter(service string) RateLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.perSvc[service]
	if !ok {
		l = s.limiters.CreateRateLimiter(service, s.limitCfg.Limit, s.limitCfg.Window)
		s.perSvc[service] = l
	}
	return l
}
