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

const DefaultHistoryLimit = 50

type GenerationHistoryRepo interface {
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.GenerationHistory, error)
	ListByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID, limit int) ([]*types.GenerationHistory, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GenerationHistory, error)
	Create(ctx context.Context, tx *gorm.DB, record *types.GenerationHistory) (*types.GenerationHistory, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, patch types.HistoryPatch) (*types.GenerationHistory, error)
}

type generationHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewGenerationHistoryRepo(db *gorm.DB, baseLog *logger.Logger) GenerationHistoryRepo {
	repoLog := baseLog.With("repo", "GenerationHistoryRepo")
	return &generationHistoryRepo{db: db, log: repoLog, now: func() time.Time { return time.Now().UTC() }}
}

func (r *generationHistoryRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.GenerationHistory, error) {
	return r.list(ctx, tx, "user_id = ?", userID, limit)
}

// ListByArtistID is used to rebuild the mirror; limit <= 0 means all rows.
func (r *generationHistoryRepo) ListByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID, limit int) ([]*types.GenerationHistory, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.list(ctx, tx, "artist_id = ?", artistID, limit)
}

func (r *generationHistoryRepo) list(ctx context.Context, tx *gorm.DB, where string, id uuid.UUID, limit int) ([]*types.GenerationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	results := []*types.GenerationHistory{}
	q := transaction.WithContext(ctx).
		Where(where, id).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *generationHistoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GenerationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rec types.GenerationHistory
	err := transaction.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *generationHistoryRepo) Create(ctx context.Context, tx *gorm.DB, record *types.GenerationHistory) (*types.GenerationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, translate(r.log, "GenerationHistoryRepo.Create", err)
	}
	return record, nil
}

func (r *generationHistoryRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, patch types.HistoryPatch) (*types.GenerationHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	cols := patch.Columns()
	cols[types.ColUpdatedAt] = r.now()

	res := transaction.WithContext(ctx).
		Model(&types.GenerationHistory{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return nil, translate(r.log, "GenerationHistoryRepo.Update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, transaction, id)
}
