package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ModularHallway100/harmony-backend/internal/data/mirror"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

const DefaultPopularCacheTTL = 60 * time.Second

type ArtistServiceConfig struct {
	PopularCacheTTL time.Duration
}

// JSONCache is the slice of the Redis client the orchestrator reads through.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error
}

type SearchResult struct {
	Artists    []types.ArtistDocument `json:"artists"`
	Total      int64                  `json:"total"`
	Page       int64                  `json:"page"`
	TotalPages int64                  `json:"totalPages"`
}

func (s *artistService) SearchArtists(ctx context.Context, filters mirror.SearchFilters, opts mirror.SearchOptions) (*SearchResult, error) {
	if _, _, err := mirror.Paginate(0, opts.Skip, opts.Limit); err != nil {
		return nil, err
	}
	if s.docs == nil {
		return nil, errMirrorUnavailable("SearchArtists")
	}

	artists, total, err := s.docs.Search(ctx, filters, opts)
	if err != nil {
		s.log.Error("search artists failed", "query", filters.Query, "error", err)
		return nil, fmt.Errorf("search artists: %w", err)
	}
	page, totalPages, err := mirror.Paginate(total, opts.Skip, opts.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Artists: artists, Total: total, Page: page, TotalPages: totalPages}, nil
}

func (s *artistService) GetPopularArtists(ctx context.Context, limit int64) ([]types.ArtistDocument, error) {
	if limit <= 0 {
		limit = mirror.DefaultPopularLimit
	}
	if s.docs == nil {
		return nil, errMirrorUnavailable("GetPopularArtists")
	}

	key := popularKey(limit)
	var cached []types.ArtistDocument
	if s.popular.get(ctx, key, &cached) {
		return cached, nil
	}

	artists, err := s.docs.Popular(ctx, limit)
	if err != nil {
		s.log.Error("popular artists failed", "limit", limit, "error", err)
		return nil, fmt.Errorf("get popular artists: %w", err)
	}
	s.popular.set(ctx, key, artists)
	return artists, nil
}

func popularKey(limit int64) string {
	return fmt.Sprintf("artists:popular:%d", limit)
}

// popularCache is a read-through wrapper whose failures only cost a
// store round trip.
type popularCache struct {
	cache JSONCache
	ttl   time.Duration
	log   *logger.Logger
}

func newPopularCache(cache JSONCache, ttl time.Duration, log *logger.Logger) *popularCache {
	if ttl <= 0 {
		ttl = DefaultPopularCacheTTL
	}
	return &popularCache{cache: cache, ttl: ttl, log: log}
}

func (p *popularCache) get(ctx context.Context, key string, dst interface{}) bool {
	if p == nil || p.cache == nil {
		return false
	}
	hit, err := p.cache.GetJSON(ctx, key, dst)
	if err != nil {
		p.log.Warn("popular cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (p *popularCache) set(ctx context.Context, key string, val interface{}) {
	if p == nil || p.cache == nil {
		return
	}
	if err := p.cache.SetJSON(ctx, key, val, p.ttl); err != nil {
		p.log.Warn("popular cache write failed", "key", key, "error", err)
	}
}
