package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ModularHallway100/harmony-backend/internal/http/handlers"
	httpMW "github.com/ModularHallway100/harmony-backend/internal/http/middleware"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	ArtistHandler     *httpH.ArtistHandler
	GenerationHandler *httpH.GenerationHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.HealthHandler != nil {
			api.GET("/health/services", cfg.HealthHandler.Services)
			api.GET("/health/stores", cfg.HealthHandler.Stores)
		}

		// Artists
		if cfg.ArtistHandler != nil {
			api.GET("/artists/search", cfg.ArtistHandler.SearchArtists)
			api.GET("/artists/popular", cfg.ArtistHandler.PopularArtists)

			api.GET("/artists/:id/details", cfg.ArtistHandler.GetDetails)
			api.POST("/artists/:id/details", cfg.ArtistHandler.CreateDetails)
			api.PATCH("/artists/:id/details", cfg.ArtistHandler.UpdateDetails)

			api.GET("/artists/:id/images", cfg.ArtistHandler.ListImages)
			api.POST("/artists/:id/images", cfg.ArtistHandler.AddImage)
			api.PATCH("/images/:id", cfg.ArtistHandler.UpdateImage)
			api.DELETE("/images/:id", cfg.ArtistHandler.DeleteImage)

			api.GET("/artists/:id/document", cfg.ArtistHandler.GetDocument)
			api.POST("/artists/:id/document", cfg.ArtistHandler.CreateDocument)
			api.PATCH("/artists/:id/document", cfg.ArtistHandler.UpdateDocument)
			api.POST("/artists/:id/document/rebuild", cfg.ArtistHandler.RebuildDocument)
		}

		// Generations
		if cfg.GenerationHandler != nil {
			api.GET("/history", cfg.GenerationHandler.ListHistory)
			api.POST("/generations", cfg.GenerationHandler.Generate)
		}
	}

	return r
}
