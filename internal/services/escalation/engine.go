package escalation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
)

// Notifier dispatches operator notifications for escalations.
type Notifier interface {
	// Dispatch persists and delivers a notification. A nil notification
	// with a nil error means no delivery target could be resolved.
	Dispatch(ctx context.Context, convCtx *models.ConversationContext, reason models.EscalationReason, message string) (*models.Notification, error)
}

// Engine is the escalation decision engine. It evaluates triggers in
// strict priority order (media, human request, frustration) and hands
// positives to the notifier.
type Engine struct {
	detector    *Detector
	frustration *FrustrationAnalyzer
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewEngine creates an escalation engine.
func NewEngine(detector *Detector, frustration *FrustrationAnalyzer, notifier Notifier, m *metrics.Metrics, logger zerolog.Logger) *Engine {
	return &Engine{
		detector:    detector,
		frustration: frustration,
		notifier:    notifier,
		metrics:     m,
		logger:      logger.With().Str("component", "escalation-engine").Logger(),
	}
}

// Check evaluates the escalation triggers for one message without side
// effects. Triggers are checked in priority order and evaluation stops
// at the first positive, so a media message never costs an AI call.
func (e *Engine) Check(ctx context.Context, message string, convCtx *models.ConversationContext) models.EscalationCheck {
	if strings.TrimSpace(message) == "" {
		return models.EscalationCheck{}
	}

	language := normalizeLanguage(convCtx.Language)
	t := Localize(language)

	if HasMediaContent(message) {
		return models.EscalationCheck{
			Escalate:         true,
			Reason:           models.ReasonMediaRedirect,
			CustomerResponse: t.MediaRedirectUserResponse,
		}
	}

	if e.detector.DetectsHumanRequest(ctx, message) {
		// The generic acknowledgement is filled in at handling time.
		return models.EscalationCheck{
			Escalate: true,
			Reason:   models.ReasonHumanRequest,
		}
	}

	analysis := e.frustration.Analyze(ctx, message, convCtx.History)
	if analysis.ShouldEscalate {
		e.logger.Info().
			Int("consecutive", analysis.ConsecutiveCount).
			Str("session_id", convCtx.SessionID).
			Msg("frustration pattern detected")
		return models.EscalationCheck{
			Escalate:         true,
			Reason:           models.ReasonFrustration,
			CustomerResponse: t.FrustrationDetected,
		}
	}

	return models.EscalationCheck{}
}

// Handle runs Check and, on a positive verdict, dispatches the operator
// notification. A handling failure downgrades the verdict to
// not-escalated so the bot keeps answering rather than going silent.
func (e *Engine) Handle(ctx context.Context, message string, convCtx *models.ConversationContext) *models.EscalationResult {
	check := e.Check(ctx, message, convCtx)
	if !check.Escalate {
		return &models.EscalationResult{}
	}

	language := normalizeLanguage(convCtx.Language)
	e.logger.Info().
		Str("reason", string(check.Reason)).
		Str("session_id", convCtx.SessionID).
		Msg("escalation triggered")

	notification, err := e.notifier.Dispatch(ctx, convCtx, check.Reason, message)
	if err != nil {
		e.logger.Error().Err(err).Str("session_id", convCtx.SessionID).Msg("escalation dispatch failed")
		return &models.EscalationResult{}
	}
	if notification == nil {
		e.logger.Error().Str("session_id", convCtx.SessionID).Msg("no notification target could be resolved")
		return &models.EscalationResult{}
	}

	if e.metrics != nil {
		e.metrics.EscalationsTriggered.WithLabelValues(string(check.Reason)).Inc()
	}

	response := check.CustomerResponse
	if response == "" {
		response = Localize(language).UserResponse
	}

	return &models.EscalationResult{
		Escalated:      true,
		Reason:         check.Reason,
		Response:       response,
		NotificationID: notification.ID,
	}
}

// normalizeLanguage collapses anything that is not Spanish onto English.
func normalizeLanguage(language string) string {
	if language == "es" {
		return "es"
	}
	return "en"
}
