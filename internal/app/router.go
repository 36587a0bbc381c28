package app

import (
	apphttp "github.com/ModularHallway100/harmony-backend/internal/http"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    middleware.Auth,
		ArtistHandler:     handlers.Artist,
		GenerationHandler: handlers.Generation,
		HealthHandler:     handlers.Health,
	})
}
