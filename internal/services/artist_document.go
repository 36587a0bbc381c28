package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ModularHallway100/harmony-backend/internal/data/mirror"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/realtime/bus"
)

func (s *artistService) GetArtistDocument(ctx context.Context, artistID string) (*types.ArtistDocument, error) {
	if s.docs == nil {
		return nil, errMirrorUnavailable("GetArtistDocument")
	}
	doc, err := s.docs.Get(ctx, artistID)
	if err != nil {
		s.log.Error("get artist document failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("get artist document: %w", err)
	}
	return doc, nil
}

func (s *artistService) CreateArtistDocument(ctx context.Context, doc *types.ArtistDocument) (*types.ArtistDocument, error) {
	if s.docs == nil {
		return nil, errMirrorUnavailable("CreateArtistDocument")
	}
	if doc == nil || strings.TrimSpace(doc.ArtistID) == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "CreateArtistDocument", "artistId required")
	}
	out, err := s.docs.Create(ctx, doc)
	if err != nil {
		s.log.Error("create artist document failed", "artist_id", doc.ArtistID, "error", err)
		return nil, fmt.Errorf("create artist document: %w", err)
	}
	return out, nil
}

func (s *artistService) UpdateArtistDocument(ctx context.Context, artistID string, patch types.DocumentPatch) (*types.ArtistDocument, error) {
	if s.docs == nil {
		return nil, errMirrorUnavailable("UpdateArtistDocument")
	}
	doc, err := s.docs.Update(ctx, artistID, patch)
	if err != nil {
		s.log.Error("update artist document failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("update artist document: %w", err)
	}
	return doc, nil
}

func (s *artistService) AppendImageToDocument(ctx context.Context, artistID string, img types.DocumentImage) (*types.ArtistDocument, error) {
	doc, err := s.mirrorAppendImage(ctx, artistID, img)
	if err != nil {
		s.log.Error("append image to document failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("append image to document: %w", err)
	}
	return doc, nil
}

func (s *artistService) AppendHistoryToDocument(ctx context.Context, artistID string, gen types.DocumentGeneration) (*types.ArtistDocument, error) {
	doc, err := s.mirrorAppendGeneration(ctx, artistID, gen)
	if err != nil {
		s.log.Error("append history to document failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("append history to document: %w", err)
	}
	return doc, nil
}

// RebuildDocumentFromLedger overwrites the document's embedded arrays and
// persona fields with what the ledger holds. Running it twice yields the
// same document.
func (s *artistService) RebuildDocumentFromLedger(ctx context.Context, artistID uuid.UUID) (*types.ArtistDocument, error) {
	const op = "RebuildDocumentFromLedger"
	if s.docs == nil {
		return nil, errMirrorUnavailable(op)
	}

	var (
		detail  *types.ArtistDetail
		images  []*types.ArtistImage
		history []*types.GenerationHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = s.detailRepo.GetByArtistID(gctx, nil, artistID)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = s.imageRepo.ListByArtistID(gctx, nil, artistID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.historyRepo.ListByArtistID(gctx, nil, artistID, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("rebuild ledger read failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("rebuild document: %w", err)
	}

	snap := mirror.LedgerSnapshot{
		Detail:  detail,
		Images:  make([]types.DocumentImage, 0, len(images)),
		History: make([]types.DocumentGeneration, 0, len(history)),
	}
	for _, img := range images {
		snap.Images = append(snap.Images, types.DocumentImageFrom(img))
	}
	for _, h := range history {
		snap.History = append(snap.History, types.DocumentGenerationFrom(h))
	}

	doc, err := s.docs.ReplaceFromLedger(ctx, artistID.String(), snap)
	if err != nil {
		s.log.Error("rebuild document write failed", "artist_id", artistID, "error", err)
		return nil, fmt.Errorf("rebuild document: %w", err)
	}
	if doc == nil {
		return nil, apperrors.New(apperrors.KindNotFound, op, "artist document "+artistID.String()+" does not exist")
	}
	s.log.Info("artist document rebuilt", "artist_id", artistID, "images", len(snap.Images), "history", len(snap.History))
	s.publish(ctx, bus.EventDocumentRebuilt, artistID.String(), "", nil)
	return doc, nil
}
