// Package docdb provides the notifications collection interface.
package docdb

import (
	"context"
	"time"

	"github.com/skedy/escalation-service/internal/domain/models"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	// SortOrderAsc represents ascending order.
	SortOrderAsc SortOrder = "asc"
	// SortOrderDesc represents descending order.
	SortOrderDesc SortOrder = "desc"
)

// ListNotificationsOptions contains options for listing notifications.
type ListNotificationsOptions struct {
	BusinessID string
	SessionID  string
	Status     models.NotificationStatus
	Limit      int64
	Skip       int64
	OrderBy    SortOrder // Order by createdAt
}

// NotificationsCollection defines the interface for notification
// collection operations.
type NotificationsCollection interface {
	// Create inserts a new notification.
	Create(ctx context.Context, notification *models.Notification) error

	// Get retrieves a notification by ID.
	Get(ctx context.Context, id string) (*models.Notification, error)

	// GetActiveProxyByAdmin finds the proxy_mode notification owned by the
	// given operator phone, if any.
	GetActiveProxyByAdmin(ctx context.Context, adminPhone string) (*models.Notification, error)

	// GetActiveProxyBySession finds the proxy_mode notification for a
	// session, if any.
	GetActiveProxyBySession(ctx context.Context, sessionID string) (*models.Notification, error)

	// List retrieves notifications with pagination and filtering.
	List(ctx context.Context, opts *ListNotificationsOptions) ([]*models.Notification, error)

	// UpdateStatus transitions a notification to a new status.
	UpdateStatus(ctx context.Context, id string, status models.NotificationStatus) error

	// MarkDeliverySuccess records a successful delivery attempt.
	MarkDeliverySuccess(ctx context.Context, id, messageID string) error

	// MarkDeliveryFailure records a failed delivery attempt. A non-nil
	// nextRetryAt schedules the next attempt for the retry worker; nil
	// means delivery is abandoned.
	MarkDeliveryFailure(ctx context.Context, id, errMsg, targetPhone string, nextRetryAt *time.Time) error

	// SetProxy attaches proxy takeover data and moves the notification to
	// proxy_mode.
	SetProxy(ctx context.Context, id string, proxy *models.ProxySessionData) error

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}
