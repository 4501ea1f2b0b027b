// Package docdb defines the document database client interface.
package docdb

import (
	"context"
)

// Client defines the interface for a document database client.
type Client interface {
	// Notifications returns the notifications collection.
	Notifications() NotificationsCollection

	// Sessions returns the chat sessions collection.
	Sessions() SessionsCollection

	// Users returns the users collection.
	Users() UsersCollection

	// Businesses returns the businesses collection.
	Businesses() BusinessesCollection

	// EnsureIndexes creates the indexes every collection needs.
	EnsureIndexes(ctx context.Context) error

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
