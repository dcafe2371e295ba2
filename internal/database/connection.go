package database

import (
	"context"
	"fmt"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection holds the MongoDB connection and configuration
type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
	Config   *DatabaseConfig
}

// Connect dials MongoDB, verifies the connection with a ping and makes sure
// the usage indexes exist. Index failures are logged, not returned.
func Connect(ctx context.Context, config *DatabaseConfig) (*Connection, error) {
	ctx = logger.WithStage(logger.WithComponent(ctx, logger.ComponentNames.Database), logger.LogStages.DatabaseOperation)
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)
	if config.AppName != "" {
		clientOptions.SetAppName(config.AppName)
	}

	logger.Info(ctx, "Connecting to MongoDB",
		"database", config.DatabaseName,
		"uri", config.MaskedURI(),
	)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	conn := &Connection{
		Client:   client,
		Database: client.Database(config.DatabaseName),
		Config:   config,
	}

	if err := conn.EnsureIndexes(ctx); err != nil {
		logger.Warn(ctx, "Failed to create database indexes", "error", err.Error())
	}
	logger.Info(ctx, "Connected to MongoDB", "database", config.DatabaseName)
	return conn, nil
}

// Ping checks the primary is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("MongoDB client is nil")
	}
	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return nil
}

// Disconnect closes the MongoDB connection
func (c *Connection) Disconnect(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Disconnect(ctx)
}

// Collection returns a MongoDB collection
func (c *Connection) Collection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}

// UsageRepository returns the repository over the usage collection.
func (c *Connection) UsageRepository() *UsageRepository {
	return NewUsageRepository(c.Collection(UsageCollection))
}

// EnsureIndexes creates the usage collection indexes.
func (c *Connection) EnsureIndexes(ctx context.Context) error {
	_, err := c.Collection(UsageCollection).Indexes().CreateMany(ctx, usageIndexes())
	if err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", UsageCollection, err)
	}
	return nil
}

func usageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetName("request_id"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("session_timestamp_desc").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("provider_timestamp_desc"),
		},
	}
}
