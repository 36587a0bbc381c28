package artist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

type ArtistDetailRepo interface {
	GetByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID) (*types.ArtistDetail, error)
	Create(ctx context.Context, tx *gorm.DB, detail *types.ArtistDetail) (*types.ArtistDetail, error)
	UpdateByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID, patch types.ArtistDetailPatch) (*types.ArtistDetail, error)
}

type artistDetailRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewArtistDetailRepo(db *gorm.DB, baseLog *logger.Logger) ArtistDetailRepo {
	repoLog := baseLog.With("repo", "ArtistDetailRepo")
	return &artistDetailRepo{db: db, log: repoLog, now: func() time.Time { return time.Now().UTC() }}
}

func (r *artistDetailRepo) GetByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID) (*types.ArtistDetail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var detail types.ArtistDetail
	err := transaction.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Take(&detail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *artistDetailRepo) Create(ctx context.Context, tx *gorm.DB, detail *types.ArtistDetail) (*types.ArtistDetail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Savepoint so a unique violation leaves a caller's transaction usable.
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return inner.Create(detail).Error
	})
	if err != nil {
		return nil, translate(r.log, "ArtistDetailRepo.Create", err)
	}
	return detail, nil
}

// UpdateByArtistID writes only the patched columns plus updated_at.
// Returns nil when no row exists for artistID.
func (r *artistDetailRepo) UpdateByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID, patch types.ArtistDetailPatch) (*types.ArtistDetail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	cols := patch.Columns()
	cols[types.ColUpdatedAt] = r.now()

	res := transaction.WithContext(ctx).
		Model(&types.ArtistDetail{}).
		Where("artist_id = ?", artistID).
		Updates(cols)
	if res.Error != nil {
		return nil, translate(r.log, "ArtistDetailRepo.UpdateByArtistID", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByArtistID(ctx, transaction, artistID)
}
