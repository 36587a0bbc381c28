package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ModularHallway100/harmony-backend/internal/data/docstore"
	apphttp "github.com/ModularHallway100/harmony-backend/internal/http"
	"github.com/ModularHallway100/harmony-backend/internal/observability"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration and connects every store. Any failure is fatal
// to startup; nothing is left open on error.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, logger.WithLevel(cfg.LogLevel), logger.WithRedaction(true, cfg.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.LogMode,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(clients.Postgres.DB(), clients.Mongo.Collection(docstore.ArtistsCollection), log)
	serviceset := wireServices(log, cfg, reposet, clients.Redis, clients.Bus, clients.Box)
	handlerset := wireHandlers(log, serviceset, clients)
	middleware := wireMiddleware(log, clients)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the event forwarder that logs what the
// socket layer will receive.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil {
		err := a.Clients.Bus.StartForwarder(ctx, func(evt bus.Event) {
			a.Log.Debug("event forwarded", "type", evt.Type, "artist_id", evt.ArtistID)
		})
		if err != nil {
			a.Log.Warn("event forwarder failed to start", "error", err)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Shutdown drains HTTP requests, then stops background work.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	timeout := a.Cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Server.Shutdown(sctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Clients.Close(ctx, a.Log)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
