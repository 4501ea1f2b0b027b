package notify

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
	"github.com/skedy/escalation-service/internal/services/escalation"
)

// Config holds dispatcher settings.
type Config struct {
	// SiteBaseURL is the dashboard base for notification links.
	SiteBaseURL string
	// FallbackPhone is used when a business has no notification phone.
	FallbackPhone string
	// TemplateName is the pre-approved escalation template.
	TemplateName string
	// HistoryLength is how many trailing messages go into the free-text
	// notification.
	HistoryLength int
	// RetryBaseDelay and RetryMaxDelay shape the delivery backoff
	// schedule consumed by the external retry worker.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	// MaxDeliveryAttempts bounds the schedule; once reached, no further
	// retry is planned.
	MaxDeliveryAttempts int
}

// Dispatcher persists escalation notifications and delivers them to the
// business operator, template first with a free-text fallback. Delivery
// failures are tracked on the record, never surfaced as escalation
// failures.
type Dispatcher struct {
	notifications docdb.NotificationsCollection
	sessions      docdb.SessionsCollection
	users         docdb.UsersCollection
	businesses    docdb.BusinessesCollection
	sender        whatsapp.Sender
	config        Config
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(db docdb.Client, sender whatsapp.Sender, config Config, m *metrics.Metrics, logger zerolog.Logger) *Dispatcher {
	if config.HistoryLength <= 0 {
		config.HistoryLength = 10
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = time.Second
	}
	if config.RetryMaxDelay <= 0 {
		config.RetryMaxDelay = 5 * time.Minute
	}
	if config.MaxDeliveryAttempts <= 0 {
		config.MaxDeliveryAttempts = 5
	}
	return &Dispatcher{
		notifications: db.Notifications(),
		sessions:      db.Sessions(),
		users:         db.Users(),
		businesses:    db.Businesses(),
		sender:        sender,
		config:        config,
		metrics:       m,
		logger:        logger.With().Str("component", "notify-dispatcher").Logger(),
	}
}

// Dispatch creates a pending notification for the escalation and
// attempts delivery. A nil notification with a nil error means no
// delivery target could be resolved. An error means the notification
// record itself could not be persisted.
func (d *Dispatcher) Dispatch(ctx context.Context, convCtx *models.ConversationContext, reason models.EscalationReason, message string) (*models.Notification, error) {
	target, err := d.resolveTarget(ctx, convCtx.BusinessID)
	if err != nil {
		return nil, err
	}
	if target == "" {
		d.logger.Error().
			Str("business_id", convCtx.BusinessID).
			Msg("no notification phone configured and no fallback available")
		return nil, nil
	}

	language := "en"
	if convCtx.Language == "es" {
		language = "es"
	}

	notification := models.NewNotification(convCtx.BusinessID, convCtx.SessionID, reason, language)
	if err := d.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	customerName := d.resolveCustomerName(ctx, convCtx)
	d.deliver(ctx, notification, target, customerName, message, convCtx)

	return notification, nil
}

// resolveTarget picks the operator phone: the business record's
// dedicated notification phone, then the business's own channel number,
// else the configured fallback.
func (d *Dispatcher) resolveTarget(ctx context.Context, businessID string) (string, error) {
	if businessID == "" {
		return "", fmt.Errorf("cannot escalate without a business ID")
	}

	business, err := d.businesses.Get(ctx, businessID)
	if err != nil {
		return "", fmt.Errorf("failed to load business %s: %w", businessID, err)
	}
	if business != nil {
		if business.Phone != "" {
			return business.Phone, nil
		}
		if business.WhatsAppNumber != "" {
			return business.WhatsAppNumber, nil
		}
	}

	return d.config.FallbackPhone, nil
}

// resolveCustomerName walks the fallback chain: channel profile name,
// then the session-linked user's full name, then the phone number.
// Lookup failures fall through rather than block the notification.
func (d *Dispatcher) resolveCustomerName(ctx context.Context, convCtx *models.ConversationContext) string {
	if name := strings.TrimSpace(convCtx.CustomerName); name != "" {
		return name
	}

	if convCtx.SessionID != "" {
		session, err := d.sessions.Get(ctx, convCtx.SessionID)
		if err != nil {
			d.logger.Warn().Err(err).Msg("failed to load session for customer name")
		} else if session != nil && session.UserID != "" {
			user, err := d.users.Get(ctx, session.UserID)
			if err != nil {
				d.logger.Warn().Err(err).Msg("failed to load linked user for customer name")
			} else if user != nil && user.FullName() != "" {
				return user.FullName()
			}
		}
	}

	if convCtx.CustomerPhone != "" {
		return convCtx.CustomerPhone
	}
	return "Unknown customer"
}

// deliver attempts the template first and falls back to free text. All
// outcomes are recorded on the notification.
func (d *Dispatcher) deliver(ctx context.Context, notification *models.Notification, target, customerName, message string, convCtx *models.ConversationContext) {
	truncated := len([]rune(CleanParameter(message))) > SafeMessageLength

	messageID, err := d.sender.SendTemplate(ctx, target, d.config.TemplateName, notification.Language,
		[]string{PrepareParameter(customerName, HeaderParamMaxLength)},
		[]string{
			PrepareParameter(customerName, HeaderParamMaxLength),
			PrepareParameter(message, SafeMessageLength),
		})
	if err == nil {
		d.recordSuccess(ctx, notification, messageID)
		// The template carries a clipped message; follow up with the full
		// context as free text.
		if truncated || len(convCtx.History) > 0 {
			if _, err := d.sender.SendText(ctx, target, d.buildFullMessage(notification, customerName, message, convCtx)); err != nil {
				d.logger.Warn().Err(err).Msg("history follow-up send failed")
			}
		}
		return
	}

	d.logger.Warn().Err(err).Str("template", d.config.TemplateName).Msg("template send failed, falling back to free text")

	messageID, err = d.sender.SendText(ctx, target, d.buildFullMessage(notification, customerName, message, convCtx))
	if err != nil {
		d.recordFailure(ctx, notification, err, target)
		return
	}
	d.recordSuccess(ctx, notification, messageID)
}

func (d *Dispatcher) recordSuccess(ctx context.Context, notification *models.Notification, messageID string) {
	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues("delivered").Inc()
	}
	if err := d.notifications.MarkDeliverySuccess(ctx, notification.ID, messageID); err != nil {
		d.logger.Error().Err(err).Str("notification_id", notification.ID).Msg("failed to record delivery success")
	}
}

func (d *Dispatcher) recordFailure(ctx context.Context, notification *models.Notification, cause error, target string) {
	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues("failed").Inc()
	}

	// Schedule the next attempt for the retry worker, backing off
	// exponentially, until the attempt budget runs out.
	var nextRetryAt *time.Time
	failedAttempts := notification.Delivery.Attempts + 1
	if failedAttempts < d.config.MaxDeliveryAttempts {
		at := time.Now().UTC().Add(models.NextRetryDelay(notification.Delivery.Attempts, d.config.RetryBaseDelay, d.config.RetryMaxDelay))
		nextRetryAt = &at
		if d.metrics != nil {
			d.metrics.DeliveryRetries.Inc()
		}
	}
	notification.Delivery.NextRetryAt = nextRetryAt

	d.logger.Error().Err(cause).Str("notification_id", notification.ID).Msg("notification delivery failed")
	if err := d.notifications.MarkDeliveryFailure(ctx, notification.ID, cause.Error(), target, nextRetryAt); err != nil {
		d.logger.Error().Err(err).Str("notification_id", notification.ID).Msg("failed to record delivery failure")
	}
}

// buildFullMessage renders the free-text operator notification: title,
// customer line, dashboard link, the recent history and the full
// triggering message, so the operator gets the complete context even
// when the template slot clipped it.
func (d *Dispatcher) buildFullMessage(notification *models.Notification, customerName, message string, convCtx *models.ConversationContext) string {
	t := escalation.Localize(notification.Language)

	title := t.NotificationTitle
	if notification.Reason == models.ReasonMediaRedirect {
		title = t.MediaRedirectTitle
	}

	dashboardLink := fmt.Sprintf("%s/protected?sessionId=%s", strings.TrimRight(d.config.SiteBaseURL, "/"), convCtx.SessionID)

	displayPhone := convCtx.CustomerPhone
	if displayPhone == "" {
		displayPhone = "Unknown"
	}

	history := convCtx.History
	if len(history) > d.config.HistoryLength {
		history = history[len(history)-d.config.HistoryLength:]
	}

	lines := make([]string, 0, len(history)+1)
	for _, msg := range history {
		lines = append(lines, roleIcon(msg.Role)+": "+TruncateParameter(msg.Content, SafeHistoryLength))
	}
	// History excludes the message being evaluated; render it as the
	// latest line.
	if message != "" {
		lines = append(lines, roleIcon(models.RoleCustomer)+": "+TruncateParameter(message, BodyParamMaxLength))
	}

	return fmt.Sprintf("%s\n\n%s %s (%s)\n\n🔗 *%s:*\n%s\n\n%s\n\n%s",
		title,
		t.ClientLabel, customerName, displayPhone,
		t.AssistRequestText,
		dashboardLink,
		t.HistoryTitle,
		strings.Join(lines, "\n"))
}

func roleIcon(role models.SenderRole) string {
	switch role {
	case models.RoleCustomer:
		return "👤"
	case models.RoleStaff:
		return "👨‍💼"
	default:
		return "🤖"
	}
}
