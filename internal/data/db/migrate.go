package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ModularHallway100/harmony-backend/internal/domain/artist"
)

// Models lists every ledger table, in migration order.
func Models() []interface{} {
	return []interface{}{
		&artist.ArtistDetail{},
		&artist.ArtistImage{},
		&artist.GenerationHistory{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func (s *PostgresService) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	return EnsureArtistIndexes(s.db)
}

// EnsureArtistIndexes adds the Postgres-only indexes gorm tags cannot express.
func EnsureArtistIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_generation_history_artist_created
		ON generation_history (artist_id, created_at DESC)
		WHERE artist_id IS NOT NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_generation_history_artist_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_artist_image_tags
		ON artist_image
		USING GIN (tags);
	`).Error; err != nil {
		return fmt.Errorf("create idx_artist_image_tags: %w", err)
	}
	return nil
}
