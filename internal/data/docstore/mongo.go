package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

const ArtistsCollection = "artists"

type Config struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
}

// Client owns the single long-lived Mongo connection pool.
type Client struct {
	cl  *mongo.Client
	db  *mongo.Database
	log *logger.Logger
}

func Connect(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	clientLog := log.With("service", "MongoClient")

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetWriteConcern(writeconcern.Majority())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}
	if cfg.SocketTimeout > 0 {
		opts.SetSocketTimeout(cfg.SocketTimeout)
	}

	cl, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	clientLog.Info("MongoDB connected", "database", cfg.Database, "max_pool", cfg.MaxPoolSize)
	return &Client{cl: cl, db: cl.Database(cfg.Database), log: clientLog}, nil
}

func (c *Client) Database() *mongo.Database { return c.db }

func (c *Client) Collection(name string) *mongo.Collection { return c.db.Collection(name) }

// Ping runs the admin ping command against the primary.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.cl.Ping(ctx, readpref.Primary()); err != nil {
		c.log.Warn("MongoDB ping failed", "error", err)
		return err
	}
	return nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.cl.Disconnect(ctx); err != nil {
		c.log.Warn("MongoDB disconnect failed", "error", err)
		return err
	}
	c.log.Info("MongoDB disconnected")
	return nil
}

// EnsureIndexes creates the artist collection indexes used by search and
// the popular feed. Safe to call on every start.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	_, err := c.Collection(ArtistsCollection).Indexes().CreateMany(ctx, ArtistIndexModels())
	if err != nil {
		return fmt.Errorf("create artist indexes: %w", err)
	}
	return nil
}

func ArtistIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: artist.DocFieldName, Value: "text"},
				{Key: "persona.bio", Value: "text"},
				{Key: "persona.backstory", Value: "text"},
			},
			Options: options.Index().SetName("artist_text"),
		},
		{Keys: bson.D{{Key: artist.DocFieldOwnerID, Value: 1}}, Options: options.Index().SetName("owner_id_1")},
		{Keys: bson.D{{Key: artist.DocFieldGenres, Value: 1}}, Options: options.Index().SetName("genres_1")},
		{Keys: bson.D{{Key: artist.DocFieldEngagementRate, Value: -1}}, Options: options.Index().SetName("engagement_rate_-1")},
		{Keys: bson.D{{Key: artist.DocFieldCreatedAt, Value: -1}}, Options: options.Index().SetName("created_at_-1")},
	}
}
