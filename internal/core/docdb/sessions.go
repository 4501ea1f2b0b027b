// Package docdb provides the chat sessions collection interface.
package docdb

import (
	"context"

	"github.com/skedy/escalation-service/internal/domain/models"
)

// SessionsCollection defines the interface for chat session operations.
type SessionsCollection interface {
	// Create inserts a new session.
	Create(ctx context.Context, session *models.ChatSession) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*models.ChatSession, error)

	// GetByCustomerPhone finds the most recent session for a customer.
	GetByCustomerPhone(ctx context.Context, businessID, phone string) (*models.ChatSession, error)

	// UpdateMode switches the session between bot and proxy mode.
	UpdateMode(ctx context.Context, id string, mode models.SessionMode) error

	// UpdateLanguage persists the resolved conversation language.
	UpdateLanguage(ctx context.Context, id, language string) error

	// Messages retrieves the trailing conversation history for a session,
	// oldest first, at most limit entries.
	Messages(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, error)

	// AddMessage appends a message to the session history.
	AddMessage(ctx context.Context, message *models.ChatMessage) error

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}

// UsersCollection defines the interface for user lookups.
type UsersCollection interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id string) (*models.User, error)
}

// BusinessesCollection defines the interface for business lookups.
type BusinessesCollection interface {
	// Get retrieves a business by ID.
	Get(ctx context.Context, id string) (*models.Business, error)
}
