package app

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/ModularHallway100/harmony-backend/internal/data/mirror"
	"github.com/ModularHallway100/harmony-backend/internal/data/repos"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

type Repos struct {
	ArtistDetail      repos.ArtistDetailRepo
	ArtistImage       repos.ArtistImageRepo
	GenerationHistory repos.GenerationHistoryRepo
	ArtistDocument    mirror.ArtistDocumentRepo
}

func wireRepos(db *gorm.DB, artists *mongo.Collection, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ArtistDetail:      repos.NewArtistDetailRepo(db, log),
		ArtistImage:       repos.NewArtistImageRepo(db, log),
		GenerationHistory: repos.NewGenerationHistoryRepo(db, log),
		ArtistDocument:    mirror.NewArtistDocumentRepo(artists, log),
	}
}
