package repos

import (
	"gorm.io/gorm"

	"github.com/ModularHallway100/harmony-backend/internal/data/repos/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

// DefaultHistoryLimit caps history listings when the caller passes no limit.
const DefaultHistoryLimit = artist.DefaultHistoryLimit

type ArtistDetailRepo = artist.ArtistDetailRepo
type ArtistImageRepo = artist.ArtistImageRepo
type GenerationHistoryRepo = artist.GenerationHistoryRepo

func NewArtistDetailRepo(db *gorm.DB, baseLog *logger.Logger) ArtistDetailRepo {
	return artist.NewArtistDetailRepo(db, baseLog)
}
func NewArtistImageRepo(db *gorm.DB, baseLog *logger.Logger) ArtistImageRepo {
	return artist.NewArtistImageRepo(db, baseLog)
}
func NewGenerationHistoryRepo(db *gorm.DB, baseLog *logger.Logger) GenerationHistoryRepo {
	return artist.NewGenerationHistoryRepo(db, baseLog)
}
