package artist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

type ArtistImageRepo interface {
	ListByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID) ([]*types.ArtistImage, error)
	GetByID(ctx context.Context, tx *gorm.DB, imageID uuid.UUID) (*types.ArtistImage, error)
	Create(ctx context.Context, tx *gorm.DB, image *types.ArtistImage) (*types.ArtistImage, error)
	Update(ctx context.Context, tx *gorm.DB, imageID uuid.UUID, patch types.ImagePatch) (*types.ArtistImage, error)
	Delete(ctx context.Context, tx *gorm.DB, imageID uuid.UUID) (*types.ArtistImage, error)
}

type artistImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArtistImageRepo(db *gorm.DB, baseLog *logger.Logger) ArtistImageRepo {
	repoLog := baseLog.With("repo", "ArtistImageRepo")
	return &artistImageRepo{db: db, log: repoLog}
}

// ListByArtistID returns images newest-first by generated_at.
func (r *artistImageRepo) ListByArtistID(ctx context.Context, tx *gorm.DB, artistID uuid.UUID) ([]*types.ArtistImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ArtistImage{}
	if err := transaction.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("generated_at DESC").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *artistImageRepo) GetByID(ctx context.Context, tx *gorm.DB, imageID uuid.UUID) (*types.ArtistImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var img types.ArtistImage
	err := transaction.WithContext(ctx).Where("id = ?", imageID).Take(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *artistImageRepo) Create(ctx context.Context, tx *gorm.DB, image *types.ArtistImage) (*types.ArtistImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(image).Error; err != nil {
		return nil, translate(r.log, "ArtistImageRepo.Create", err)
	}
	return image, nil
}

func (r *artistImageRepo) Update(ctx context.Context, tx *gorm.DB, imageID uuid.UUID, patch types.ImagePatch) (*types.ArtistImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	cols := patch.Columns()
	if len(cols) == 0 {
		// Images carry no updated_at; an empty patch is a read.
		return r.GetByID(ctx, transaction, imageID)
	}
	res := transaction.WithContext(ctx).
		Model(&types.ArtistImage{}).
		Where("id = ?", imageID).
		Updates(cols)
	if res.Error != nil {
		return nil, translate(r.log, "ArtistImageRepo.Update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, transaction, imageID)
}

// Delete hard-deletes the image and returns the removed row, or nil when
// nothing matched.
func (r *artistImageRepo) Delete(ctx context.Context, tx *gorm.DB, imageID uuid.UUID) (*types.ArtistImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var deleted *types.ArtistImage
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		img, err := r.GetByID(ctx, inner, imageID)
		if err != nil || img == nil {
			return err
		}
		res := inner.Where("id = ?", imageID).Delete(&types.ArtistImage{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			deleted = img
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
