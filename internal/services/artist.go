package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ModularHallway100/harmony-backend/internal/data/mirror"
	"github.com/ModularHallway100/harmony-backend/internal/data/repos"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/realtime/bus"
)

// ImageWrite is the result of a ledger write that also touched the mirror.
// MirrorStale means the ledger row is committed but the artist document
// did not receive it; RebuildDocumentFromLedger repairs that.
type ImageWrite struct {
	Image       *types.ArtistImage `json:"image"`
	MirrorStale bool               `json:"mirrorStale"`
}

type HistoryWrite struct {
	Record      *types.GenerationHistory `json:"record"`
	MirrorStale bool                     `json:"mirrorStale"`
}

// ArtistService coordinates the relational ledger and the document mirror.
type ArtistService interface {
	GetArtistDetails(ctx context.Context, artistID uuid.UUID) (*types.ArtistDetail, error)
	CreateArtistDetails(ctx context.Context, artistID uuid.UUID, in types.ArtistDetailInput) (*types.ArtistDetail, error)
	UpdateArtistDetails(ctx context.Context, artistID uuid.UUID, patch types.ArtistDetailPatch) (*types.ArtistDetail, error)

	ListImages(ctx context.Context, artistID uuid.UUID) ([]*types.ArtistImage, error)
	AddImage(ctx context.Context, artistID uuid.UUID, in types.ImageInput) (*ImageWrite, error)
	UpdateImage(ctx context.Context, imageID uuid.UUID, patch types.ImagePatch) (*types.ArtistImage, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) (*types.ArtistImage, error)

	ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*types.GenerationHistory, error)
	AddHistory(ctx context.Context, in types.HistoryInput) (*HistoryWrite, error)
	UpdateHistory(ctx context.Context, id uuid.UUID, patch types.HistoryPatch) (*HistoryWrite, error)

	GetArtistDocument(ctx context.Context, artistID string) (*types.ArtistDocument, error)
	CreateArtistDocument(ctx context.Context, doc *types.ArtistDocument) (*types.ArtistDocument, error)
	UpdateArtistDocument(ctx context.Context, artistID string, patch types.DocumentPatch) (*types.ArtistDocument, error)
	AppendImageToDocument(ctx context.Context, artistID string, img types.DocumentImage) (*types.ArtistDocument, error)
	AppendHistoryToDocument(ctx context.Context, artistID string, gen types.DocumentGeneration) (*types.ArtistDocument, error)
	RebuildDocumentFromLedger(ctx context.Context, artistID uuid.UUID) (*types.ArtistDocument, error)

	SearchArtists(ctx context.Context, filters mirror.SearchFilters, opts mirror.SearchOptions) (*SearchResult, error)
	GetPopularArtists(ctx context.Context, limit int64) ([]types.ArtistDocument, error)
}

type artistService struct {
	log         *logger.Logger
	detailRepo  repos.ArtistDetailRepo
	imageRepo   repos.ArtistImageRepo
	historyRepo repos.GenerationHistoryRepo
	docs        mirror.ArtistDocumentRepo
	popular     *popularCache
	events      bus.Bus
}

// NewArtistService wires the orchestrator. docs, cache and events may be
// nil: mirror writes then report stale, popular reads skip the cache and no
// events are published.
func NewArtistService(
	log *logger.Logger,
	detailRepo repos.ArtistDetailRepo,
	imageRepo repos.ArtistImageRepo,
	historyRepo repos.GenerationHistoryRepo,
	docs mirror.ArtistDocumentRepo,
	cache JSONCache,
	events bus.Bus,
	cfg ArtistServiceConfig,
) ArtistService {
	serviceLog := log.With("service", "ArtistService")
	return &artistService{
		log:         serviceLog,
		detailRepo:  detailRepo,
		imageRepo:   imageRepo,
		historyRepo: historyRepo,
		docs:        docs,
		popular:     newPopularCache(cache, cfg.PopularCacheTTL, serviceLog),
		events:      events,
	}
}

func (s *artistService) GetArtistDetails(ctx context.Context, artistID uuid.UUID) (*types.ArtistDetail, error) {
	detail, err := s.detailRepo.GetByArtistID(ctx, nil, artistID)
	if err != nil {
		s.log.Error("get artist details failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("get artist details: %w", err)
	}
	return detail, nil
}

func (s *artistService) CreateArtistDetails(ctx context.Context, artistID uuid.UUID, in types.ArtistDetailInput) (*types.ArtistDetail, error) {
	if artistID == uuid.Nil {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "CreateArtistDetails", "artist id required")
	}
	detail, err := s.detailRepo.Create(ctx, nil, in.ToModel(artistID))
	if err != nil {
		s.log.Error("create artist details failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("create artist details: %w", err)
	}
	return detail, nil
}

func (s *artistService) UpdateArtistDetails(ctx context.Context, artistID uuid.UUID, patch types.ArtistDetailPatch) (*types.ArtistDetail, error) {
	detail, err := s.detailRepo.UpdateByArtistID(ctx, nil, artistID, patch)
	if err != nil {
		s.log.Error("update artist details failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("update artist details: %w", err)
	}
	return detail, nil
}

func (s *artistService) ListImages(ctx context.Context, artistID uuid.UUID) ([]*types.ArtistImage, error) {
	images, err := s.imageRepo.ListByArtistID(ctx, nil, artistID)
	if err != nil {
		s.log.Error("list images failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

func (s *artistService) AddImage(ctx context.Context, artistID uuid.UUID, in types.ImageInput) (*ImageWrite, error) {
	if artistID == uuid.Nil {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "AddImage", "artist id required")
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "AddImage", "imageUrl required")
	}

	img, err := s.imageRepo.Create(ctx, nil, in.ToModel(artistID))
	if err != nil {
		s.log.Error("add image failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("add image: %w", err)
	}

	out := &ImageWrite{Image: img}
	if _, err := s.mirrorAppendImage(ctx, artistID.String(), types.DocumentImageFrom(img)); err != nil {
		s.log.Warn("mirror image append failed; document is stale",
			"artist_id", artistID, "image_id", img.ID, "error", err)
		out.MirrorStale = true
	}
	s.publish(ctx, bus.EventImageAdded, artistID.String(), "", types.DocumentImageFrom(img))
	return out, nil
}

func (s *artistService) UpdateImage(ctx context.Context, imageID uuid.UUID, patch types.ImagePatch) (*types.ArtistImage, error) {
	img, err := s.imageRepo.Update(ctx, nil, imageID, patch)
	if err != nil {
		s.log.Error("update image failed", "image_id", imageID, "error", err)
		return nil, fmt.Errorf("update image: %w", err)
	}
	return img, nil
}

func (s *artistService) DeleteImage(ctx context.Context, imageID uuid.UUID) (*types.ArtistImage, error) {
	img, err := s.imageRepo.Delete(ctx, nil, imageID)
	if err != nil {
		s.log.Error("delete image failed", "image_id", imageID, "error", err)
		return nil, fmt.Errorf("delete image: %w", err)
	}
	return img, nil
}

func (s *artistService) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*types.GenerationHistory, error) {
	if limit <= 0 {
		limit = repos.DefaultHistoryLimit
	}
	rows, err := s.historyRepo.ListByUserID(ctx, nil, userID, limit)
	if err != nil {
		s.log.Error("list history failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

func (s *artistService) AddHistory(ctx context.Context, in types.HistoryInput) (*HistoryWrite, error) {
	if err := validateHistoryInput(in); err != nil {
		return nil, err
	}

	rec, err := s.historyRepo.Create(ctx, nil, in.ToModel())
	if err != nil {
		s.log.Error("add history failed", "user_id", in.UserID, "error", err)
		return nil, fmt.Errorf("add history: %w", err)
	}
	return s.mirrorHistory(ctx, rec, false), nil
}

func (s *artistService) UpdateHistory(ctx context.Context, id uuid.UUID, patch types.HistoryPatch) (*HistoryWrite, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "UpdateHistory", "unknown status "+string(*patch.Status))
	}
	rec, err := s.historyRepo.Update(ctx, nil, id, patch)
	if err != nil {
		s.log.Error("update history failed", "history_id", id, "error", err)
		return nil, fmt.Errorf("update history: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return s.mirrorHistory(ctx, rec, true), nil
}

// mirrorHistory copies a committed history row into the artist document.
// replace swaps an existing embedded entry instead of pushing a new one.
func (s *artistService) mirrorHistory(ctx context.Context, rec *types.GenerationHistory, replace bool) *HistoryWrite {
	out := &HistoryWrite{Record: rec}
	if rec.ArtistID == nil {
		return out
	}
	artistID := rec.ArtistID.String()
	gen := types.DocumentGenerationFrom(rec)

	var err error
	if replace && s.docs != nil {
		_, err = s.docs.ReplaceGeneration(ctx, artistID, gen)
	} else {
		_, err = s.mirrorAppendGeneration(ctx, artistID, gen)
	}
	if err != nil {
		s.log.Warn("mirror history write failed; document is stale",
			"artist_id", artistID, "history_id", rec.ID, "error", err)
		out.MirrorStale = true
		return out
	}
	s.publish(ctx, bus.EventHistoryAppended, artistID, rec.UserID.String(), gen)
	return out
}

func (s *artistService) mirrorAppendImage(ctx context.Context, artistID string, img types.DocumentImage) (*types.ArtistDocument, error) {
	if s.docs == nil {
		return nil, errMirrorUnavailable("AppendImageToDocument")
	}
	return s.docs.AppendImage(ctx, artistID, img)
}

func (s *artistService) mirrorAppendGeneration(ctx context.Context, artistID string, gen types.DocumentGeneration) (*types.ArtistDocument, error) {
	if s.docs == nil {
		return nil, errMirrorUnavailable("AppendHistoryToDocument")
	}
	return s.docs.AppendGeneration(ctx, artistID, gen)
}

func (s *artistService) publish(ctx context.Context, eventType, artistID, userID string, payload interface{}) {
	if s.events == nil {
		return
	}
	evt, err := bus.NewEvent(eventType, artistID, userID, payload)
	if err != nil {
		s.log.Warn("event encode failed", "event", eventType, "error", err)
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("event publish failed", "event", eventType, "artist_id", artistID, "error", err)
	}
}

func validateHistoryInput(in types.HistoryInput) error {
	const op = "AddHistory"
	switch {
	case in.UserID == uuid.Nil:
		return apperrors.New(apperrors.KindInvalidArgument, op, "userId required")
	case !in.GenerationType.Valid():
		return apperrors.New(apperrors.KindInvalidArgument, op, "unknown generationType "+string(in.GenerationType))
	case strings.TrimSpace(in.OriginalPrompt) == "":
		return apperrors.New(apperrors.KindInvalidArgument, op, "originalPrompt required")
	case strings.TrimSpace(in.ServiceUsed) == "":
		return apperrors.New(apperrors.KindInvalidArgument, op, "serviceUsed required")
	case !in.Status.Valid():
		return apperrors.New(apperrors.KindInvalidArgument, op, "unknown status "+string(in.Status))
	}
	return nil
}

func errMirrorUnavailable(op string) error {
	return apperrors.New(apperrors.KindConfiguration, op, "document store not configured")
}
