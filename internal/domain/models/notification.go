package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus tracks a notification through its lifecycle, from
// creation through operator resolution.
type NotificationStatus string

const (
	// StatusPending is the initial status, set before any delivery attempt.
	StatusPending NotificationStatus = "pending"
	// StatusAttending means an operator acknowledged the notification.
	StatusAttending NotificationStatus = "attending"
	// StatusProxyMode means an operator has taken over the conversation.
	StatusProxyMode NotificationStatus = "proxy_mode"
	// StatusProvidedHelp is a terminal status: the operator helped and
	// handed the conversation back to the bot.
	StatusProvidedHelp NotificationStatus = "provided_help"
	// StatusIgnored is a terminal status: the operator dismissed the alert.
	StatusIgnored NotificationStatus = "ignored"
	// StatusWrongActivation is a terminal status: the escalation was a
	// false positive.
	StatusWrongActivation NotificationStatus = "wrong_activation"
)

// ValidResolutionStatus reports whether s is a status an operator may
// resolve a notification to.
func ValidResolutionStatus(s NotificationStatus) bool {
	switch s {
	case StatusProvidedHelp, StatusIgnored, StatusWrongActivation:
		return true
	}
	return false
}

// EscalationReason identifies which trigger fired.
type EscalationReason string

const (
	// ReasonMediaRedirect fires when the customer sends image, video or
	// document content the bot cannot process.
	ReasonMediaRedirect EscalationReason = "media_redirect"
	// ReasonHumanRequest fires when the customer explicitly asks for a person.
	ReasonHumanRequest EscalationReason = "human_request"
	// ReasonFrustration fires on sustained customer frustration.
	ReasonFrustration EscalationReason = "frustration"
)

// DeliveryState records the outcome of notification delivery attempts.
type DeliveryState struct {
	Attempts    int        `json:"attempts" bson:"attempts"`
	Delivered   bool       `json:"delivered" bson:"delivered"`
	MessageID   string     `json:"messageId,omitempty" bson:"messageId,omitempty"`
	TargetPhone string     `json:"targetPhone,omitempty" bson:"targetPhone,omitempty"`
	LastError   string     `json:"lastError,omitempty" bson:"lastError,omitempty"`
	LastAttempt *time.Time `json:"lastAttempt,omitempty" bson:"lastAttempt,omitempty"`
	// NextRetryAt schedules the next delivery attempt for the external
	// retry worker. Nil once delivery succeeded or attempts ran out.
	NextRetryAt *time.Time `json:"nextRetryAt,omitempty" bson:"nextRetryAt,omitempty"`
}

// ProxySessionData records an operator takeover on a notification.
type ProxySessionData struct {
	AdminPhone        string    `json:"adminPhone" bson:"adminPhone"`
	TemplateMessageID string    `json:"templateMessageId,omitempty" bson:"templateMessageId,omitempty"`
	StartedAt         time.Time `json:"startedAt" bson:"startedAt"`
}

// Notification is the persistent record of an escalation.
type Notification struct {
	ID         string             `json:"id" bson:"_id"`
	BusinessID string             `json:"businessId" bson:"businessId"`
	SessionID  string             `json:"sessionId" bson:"sessionId"`
	Reason     EscalationReason   `json:"reason" bson:"reason"`
	Message    string             `json:"message" bson:"message"`
	Status     NotificationStatus `json:"status" bson:"status"`
	Language   string             `json:"language" bson:"language"`
	Delivery   DeliveryState      `json:"delivery" bson:"delivery"`
	Proxy      *ProxySessionData  `json:"proxy,omitempty" bson:"proxy,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewNotification creates a pending notification for an escalation.
func NewNotification(businessID, sessionID string, reason EscalationReason, language string) *Notification {
	now := time.Now().UTC()
	return &Notification{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		SessionID:  sessionID,
		Reason:     reason,
		Message:    "Escalation triggered: " + string(reason),
		Status:     StatusPending,
		Language:   language,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NextRetryDelay returns the wait before delivery attempt number
// retryCount+1. The delay doubles from base and is capped at max.
func NextRetryDelay(retryCount int, base, max time.Duration) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	delay := base
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
