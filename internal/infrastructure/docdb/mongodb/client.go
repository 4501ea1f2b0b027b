// Package mongodb provides MongoDB client implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skedy/escalation-service/internal/core/docdb"
)

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client        *mongo.Client
	notifications *NotificationsCollection
	sessions      *SessionsCollection
	users         *UsersCollection
	businesses    *BusinessesCollection
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
}

// NewClient creates a new MongoDB client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(config.DatabaseName)

	return &Client{
		client:        client,
		notifications: NewNotificationsCollection(db),
		sessions:      NewSessionsCollection(db),
		users:         NewUsersCollection(db),
		businesses:    NewBusinessesCollection(db),
	}, nil
}

// Notifications returns the typed notifications collection.
func (c *Client) Notifications() docdb.NotificationsCollection {
	return c.notifications
}

// Sessions returns the typed chat sessions collection.
func (c *Client) Sessions() docdb.SessionsCollection {
	return c.sessions
}

// Users returns the typed users collection.
func (c *Client) Users() docdb.UsersCollection {
	return c.users
}

// Businesses returns the typed businesses collection.
func (c *Client) Businesses() docdb.BusinessesCollection {
	return c.businesses
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

// EnsureIndexes creates all necessary indexes for all collections.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	if err := c.notifications.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure notifications indexes: %w", err)
	}
	if err := c.sessions.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure sessions indexes: %w", err)
	}
	return nil
}
