// Package mongodb provides the chat sessions collection implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skedy/escalation-service/internal/domain/models"
)

const (
	// SessionsCollectionName is the name of the chat sessions collection.
	SessionsCollectionName = "chat_sessions"
	// SessionMessagesCollectionName is the name of the per-session message
	// history collection.
	SessionMessagesCollectionName = "chat_messages"
)

// SessionsCollection implements docdb.SessionsCollection for MongoDB.
type SessionsCollection struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

// NewSessionsCollection creates a new sessions collection wrapper.
func NewSessionsCollection(db *mongo.Database) *SessionsCollection {
	return &SessionsCollection{
		sessions: db.Collection(SessionsCollectionName),
		messages: db.Collection(SessionMessagesCollectionName),
	}
}

// Create inserts a new session.
func (c *SessionsCollection) Create(ctx context.Context, session *models.ChatSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := c.sessions.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID.
func (c *SessionsCollection) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := c.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// GetByCustomerPhone finds the most recent session for a customer.
func (c *SessionsCollection) GetByCustomerPhone(ctx context.Context, businessID, phone string) (*models.ChatSession, error) {
	filter := bson.M{
		"businessId":    businessID,
		"customerPhone": phone,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var session models.ChatSession
	err := c.sessions.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by customer phone: %w", err)
	}
	return &session, nil
}

// UpdateMode switches the session between bot and proxy mode.
func (c *SessionsCollection) UpdateMode(ctx context.Context, id string, mode models.SessionMode) error {
	update := bson.M{
		"$set": bson.M{
			"mode":      mode,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := c.sessions.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update session mode: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// UpdateLanguage persists the resolved conversation language.
func (c *SessionsCollection) UpdateLanguage(ctx context.Context, id, language string) error {
	update := bson.M{
		"$set": bson.M{
			"language":  language,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := c.sessions.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update session language: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// Messages retrieves the trailing history for a session, oldest first.
func (c *SessionsCollection) Messages(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	cursor, err := c.messages.Find(ctx, bson.M{"sessionId": sessionID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list session messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode session messages: %w", err)
	}

	// Query is newest-first to apply the limit; callers want oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// AddMessage appends a message to the session history.
func (c *SessionsCollection) AddMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.SessionID == "" {
		return fmt.Errorf("message session ID is required")
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	_, err := c.messages.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to insert session message: %w", err)
	}

	return nil
}

// EnsureIndexes creates necessary indexes for the sessions collections.
func (c *SessionsCollection) EnsureIndexes(ctx context.Context) error {
	sessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "businessId", Value: 1},
				{Key: "customerPhone", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_business_phone_created"),
		},
		{
			Keys:    bson.D{{Key: "mode", Value: 1}},
			Options: options.Index().SetName("idx_mode"),
		},
	}

	_, err := c.sessions.Indexes().CreateMany(ctx, sessionIndexes)
	if err != nil {
		return fmt.Errorf("failed to create sessions indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sessionId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_session_created"),
		},
	}

	_, err = c.messages.Indexes().CreateMany(ctx, messageIndexes)
	if err != nil {
		return fmt.Errorf("failed to create session messages indexes: %w", err)
	}

	return nil
}
