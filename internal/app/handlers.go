package app

import (
	httpH "github.com/ModularHallway100/harmony-backend/internal/http/handlers"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Artist     *httpH.ArtistHandler
	Generation *httpH.GenerationHandler
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	stores := map[string]httpH.Pinger{}
	if clients.Postgres != nil {
		stores["postgres"] = clients.Postgres
	}
	if clients.Mongo != nil {
		stores["mongodb"] = clients.Mongo
	}
	if clients.Redis != nil {
		stores["redis"] = clients.Redis
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(services.Keys, stores),
		Artist:     httpH.NewArtistHandler(services.Artists),
		Generation: httpH.NewGenerationHandler(services.Generation, services.Artists),
	}
}
