package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ModularHallway100/harmony-backend/internal/data/cache"
	"github.com/ModularHallway100/harmony-backend/internal/data/db"
	"github.com/ModularHallway100/harmony-backend/internal/data/docstore"
	"github.com/ModularHallway100/harmony-backend/internal/platform/jwtauth"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
	"github.com/ModularHallway100/harmony-backend/internal/platform/secretbox"
	"github.com/ModularHallway100/harmony-backend/internal/realtime/bus"
)

type Clients struct {
	Postgres *db.PostgresService
	Mongo    *docstore.Client
	Redis    *cache.Client
	Bus      bus.Bus
	Box      *secretbox.Box
	Verifier *jwtauth.Verifier
}

// wireClients opens every store. A failure closes whatever was already
// opened.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (_ Clients, err error) {
	log.Info("Wiring clients...")
	var c Clients
	defer func() {
		if err != nil {
			c.Close(context.Background(), log)
		}
	}()

	// Secrets
	if c.Box, err = secretbox.New(cfg.EncryptionKey); err != nil {
		return Clients{}, fmt.Errorf("init secret box: %w", err)
	}
	if c.Verifier, err = jwtauth.NewVerifier(cfg.JWTSecretKey); err != nil {
		return Clients{}, fmt.Errorf("init jwt verifier: %w", err)
	}

	// Postgres
	c.Postgres, err = db.NewPostgresService(log, db.PostgresConfig{
		DSN:            cfg.PostgresDSN,
		MaxConns:       cfg.PostgresMaxConns,
		IdleTimeout:    cfg.PostgresIdleTimeout,
		ConnectTimeout: cfg.PostgresConnectTimeout,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init postgres: %w", err)
	}
	if err = c.Postgres.AutoMigrateAll(); err != nil {
		return Clients{}, fmt.Errorf("postgres automigrate: %w", err)
	}

	// Mongo
	c.Mongo, err = docstore.Connect(ctx, log, docstore.Config{
		URI:                    cfg.MongoURI,
		Database:               cfg.MongoDatabase,
		MaxPoolSize:            cfg.MongoMaxPool,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
		SocketTimeout:          cfg.MongoSocketTimeout,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init mongo: %w", err)
	}
	if err = c.Mongo.EnsureIndexes(ctx); err != nil {
		return Clients{}, fmt.Errorf("mongo indexes: %w", err)
	}

	// Redis
	c.Redis, err = cache.New(log, cache.Config{URL: cfg.RedisURL, MaxReconnect: cfg.RedisMaxReconnect})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if err = c.Redis.Connect(ctx); err != nil {
		return Clients{}, err
	}
	if c.Bus, err = bus.NewRedisBus(log, c.Redis.Raw(), cfg.RedisChannel); err != nil {
		return Clients{}, fmt.Errorf("init event bus: %w", err)
	}

	return c, nil
}

// Close releases the stores in reverse order of opening.
func (c Clients) Close(ctx context.Context, log *logger.Logger) {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Quit(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if c.Mongo != nil {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := c.Mongo.Disconnect(dctx); err != nil {
			log.Warn("mongo disconnect failed", "error", err)
		}
		cancel()
	}
	if c.Postgres != nil {
		if err := c.Postgres.Close(); err != nil {
			log.Warn("postgres close failed", "error", err)
		}
	}
}
