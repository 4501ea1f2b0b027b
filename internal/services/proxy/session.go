// Package proxy implements operator takeover of conversations: session
// lifecycle and bidirectional message relay between operator and
// customer.
package proxy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/channels/whatsapp"
	"github.com/skedy/escalation-service/internal/core/docdb"
	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
)

const (
	// TakeoverKeyword is the exact text an operator sends to hand the
	// conversation back to the bot. Matching is case-insensitive.
	TakeoverKeyword = "skedy-continue"
	// TakeoverButtonID is the button payload equivalent.
	TakeoverButtonID = "return_control_to_bot"
	// EndConfirmation is sent to the operator when proxy mode ends.
	EndConfirmation = "🔄 Proxy mode ended. Bot has resumed control of the conversation."
)

// IsTakeoverCommand reports whether an operator message hands control
// back to the bot, either by button or by keyword.
func IsTakeoverCommand(message, buttonID string) bool {
	if buttonID == TakeoverButtonID {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(message), TakeoverKeyword)
}

// Manager owns the proxy session lifecycle.
type Manager struct {
	notifications docdb.NotificationsCollection
	sessions      docdb.SessionsCollection
	sender        whatsapp.Sender
	maxDuration   time.Duration
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewManager creates a proxy session manager.
func NewManager(db docdb.Client, sender whatsapp.Sender, maxDuration time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Manager {
	if maxDuration <= 0 {
		maxDuration = 24 * time.Hour
	}
	return &Manager{
		notifications: db.Notifications(),
		sessions:      db.Sessions(),
		sender:        sender,
		maxDuration:   maxDuration,
		metrics:       m,
		logger:        logger.With().Str("component", "proxy-manager").Logger(),
	}
}

// Start moves a notification into proxy_mode and flips the chat session
// so the bot stops answering.
func (m *Manager) Start(ctx context.Context, notificationID, sessionID, adminPhone, templateMessageID string) error {
	proxy := &models.ProxySessionData{
		AdminPhone:        adminPhone,
		TemplateMessageID: templateMessageID,
		StartedAt:         time.Now().UTC(),
	}

	if err := m.notifications.SetProxy(ctx, notificationID, proxy); err != nil {
		return fmt.Errorf("failed to start proxy session: %w", err)
	}
	if err := m.sessions.UpdateMode(ctx, sessionID, models.ModeProxy); err != nil {
		return fmt.Errorf("failed to switch session to proxy mode: %w", err)
	}

	if m.metrics != nil {
		m.metrics.ProxySessionsActive.Inc()
	}
	m.logger.Info().
		Str("notification_id", notificationID).
		Str("session_id", sessionID).
		Str("admin_phone", adminPhone).
		Msg("proxy session started")

	return nil
}

// End resolves the notification as provided_help, hands the session back
// to the bot and confirms to the operator.
func (m *Manager) End(ctx context.Context, notification *models.Notification) error {
	if err := m.notifications.UpdateStatus(ctx, notification.ID, models.StatusProvidedHelp); err != nil {
		return fmt.Errorf("failed to resolve notification: %w", err)
	}
	if err := m.sessions.UpdateMode(ctx, notification.SessionID, models.ModeBot); err != nil {
		return fmt.Errorf("failed to hand session back to bot: %w", err)
	}

	if m.metrics != nil {
		m.metrics.ProxySessionsActive.Dec()
	}

	if notification.Proxy != nil {
		if _, err := m.sender.SendText(ctx, notification.Proxy.AdminPhone, EndConfirmation); err != nil {
			m.logger.Warn().Err(err).Msg("failed to confirm proxy end to operator")
		}
	}

	m.logger.Info().
		Str("notification_id", notification.ID).
		Str("session_id", notification.SessionID).
		Msg("proxy session ended")

	return nil
}

// Validate checks a proxy session is still within its allowed duration.
// Expired sessions are ended on the spot and report invalid.
func (m *Manager) Validate(ctx context.Context, notification *models.Notification) (bool, error) {
	if notification == nil || notification.Status != models.StatusProxyMode || notification.Proxy == nil {
		return false, nil
	}

	if time.Since(notification.Proxy.StartedAt) > m.maxDuration {
		m.logger.Info().
			Str("notification_id", notification.ID).
			Msg("proxy session expired, handing back to bot")
		if err := m.End(ctx, notification); err != nil {
			return false, err
		}
		return false, nil
	}

	return true, nil
}

// ActiveByAdmin finds the operator's live proxy session, if any.
func (m *Manager) ActiveByAdmin(ctx context.Context, adminPhone string) (*models.Notification, error) {
	return m.notifications.GetActiveProxyByAdmin(ctx, adminPhone)
}

// ActiveBySession finds the live proxy session for a conversation, if any.
func (m *Manager) ActiveBySession(ctx context.Context, sessionID string) (*models.Notification, error) {
	return m.notifications.GetActiveProxyBySession(ctx, sessionID)
}
