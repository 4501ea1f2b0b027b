// Package mongodb provides the notifications collection implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skedy/escalation-service/internal/core/docdb"
	"github.com/skedy/escalation-service/internal/domain/models"
)

const (
	// NotificationsCollectionName is the name of the notifications collection.
	NotificationsCollectionName = "notifications"
)

// NotificationsCollection implements docdb.NotificationsCollection for MongoDB.
type NotificationsCollection struct {
	collection *mongo.Collection
}

// NewNotificationsCollection creates a new notifications collection wrapper.
func NewNotificationsCollection(db *mongo.Database) *NotificationsCollection {
	return &NotificationsCollection{
		collection: db.Collection(NotificationsCollectionName),
	}
}

// Create inserts a new notification.
func (c *NotificationsCollection) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		return fmt.Errorf("notification ID is required")
	}

	now := time.Now().UTC()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}
	notification.UpdatedAt = now

	_, err := c.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// Get retrieves a notification by ID.
func (c *NotificationsCollection) Get(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := c.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// GetActiveProxyByAdmin finds the proxy_mode notification owned by an operator.
func (c *NotificationsCollection) GetActiveProxyByAdmin(ctx context.Context, adminPhone string) (*models.Notification, error) {
	filter := bson.M{
		"status":           models.StatusProxyMode,
		"proxy.adminPhone": adminPhone,
	}

	var notification models.Notification
	err := c.collection.FindOne(ctx, filter).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active proxy notification: %w", err)
	}
	return &notification, nil
}

// GetActiveProxyBySession finds the proxy_mode notification for a session.
func (c *NotificationsCollection) GetActiveProxyBySession(ctx context.Context, sessionID string) (*models.Notification, error) {
	filter := bson.M{
		"status":    models.StatusProxyMode,
		"sessionId": sessionID,
	}

	var notification models.Notification
	err := c.collection.FindOne(ctx, filter).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active proxy notification: %w", err)
	}
	return &notification, nil
}

// List retrieves notifications with pagination and filtering.
func (c *NotificationsCollection) List(ctx context.Context, opts *docdb.ListNotificationsOptions) ([]*models.Notification, error) {
	filter := c.buildFilter(opts)
	findOpts := c.buildFindOptions(opts)

	cursor, err := c.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

// UpdateStatus transitions a notification to a new status.
func (c *NotificationsCollection) UpdateStatus(ctx context.Context, id string, status models.NotificationStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := c.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}

	return nil
}

// MarkDeliverySuccess records a successful delivery attempt.
func (c *NotificationsCollection) MarkDeliverySuccess(ctx context.Context, id, messageID string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"delivery.delivered":   true,
			"delivery.messageId":   messageID,
			"delivery.lastError":   "",
			"delivery.lastAttempt": now,
			"updatedAt":            now,
		},
		"$unset": bson.M{"delivery.nextRetryAt": ""},
		"$inc":   bson.M{"delivery.attempts": 1},
	}

	result, err := c.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark delivery success: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}

	return nil
}

// MarkDeliveryFailure records a failed delivery attempt and schedules
// the next one, or drops the schedule when nextRetryAt is nil.
func (c *NotificationsCollection) MarkDeliveryFailure(ctx context.Context, id, errMsg, targetPhone string, nextRetryAt *time.Time) error {
	now := time.Now().UTC()
	set := bson.M{
		"delivery.delivered":   false,
		"delivery.lastError":   errMsg,
		"delivery.targetPhone": targetPhone,
		"delivery.lastAttempt": now,
		"updatedAt":            now,
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"delivery.attempts": 1},
	}
	if nextRetryAt != nil {
		set["delivery.nextRetryAt"] = nextRetryAt.UTC()
	} else {
		update["$unset"] = bson.M{"delivery.nextRetryAt": ""}
	}

	result, err := c.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark delivery failure: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}

	return nil
}

// SetProxy attaches proxy takeover data and moves the notification to
// proxy_mode.
func (c *NotificationsCollection) SetProxy(ctx context.Context, id string, proxy *models.ProxySessionData) error {
	update := bson.M{
		"$set": bson.M{
			"status":    models.StatusProxyMode,
			"proxy":     proxy,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := c.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set proxy data: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}

	return nil
}

// EnsureIndexes creates necessary indexes for the notifications collection.
func (c *NotificationsCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "businessId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_business_created"),
		},
		{
			Keys: bson.D{
				{Key: "sessionId", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_session_status"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "proxy.adminPhone", Value: 1},
			},
			Options: options.Index().SetName("idx_status_admin"),
		},
	}

	_, err := c.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create notifications indexes: %w", err)
	}

	return nil
}

// buildFilter creates a MongoDB filter from list options.
func (c *NotificationsCollection) buildFilter(opts *docdb.ListNotificationsOptions) bson.M {
	filter := bson.M{}

	if opts == nil {
		return filter
	}

	if opts.BusinessID != "" {
		filter["businessId"] = opts.BusinessID
	}
	if opts.SessionID != "" {
		filter["sessionId"] = opts.SessionID
	}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	return filter
}

// buildFindOptions creates MongoDB find options from list options.
func (c *NotificationsCollection) buildFindOptions(opts *docdb.ListNotificationsOptions) *options.FindOptions {
	findOpts := options.Find()

	if opts == nil {
		return findOpts
	}

	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	// Default to descending order by createdAt
	sortOrder := -1
	if opts.OrderBy == docdb.SortOrderAsc {
		sortOrder = 1
	}
	findOpts.SetSort(bson.D{{Key: "createdAt", Value: sortOrder}})

	return findOpts
}
