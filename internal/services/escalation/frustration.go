package escalation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/core/ai"
	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
)

// FrustrationConfig tunes the sustained-frustration analysis.
type FrustrationConfig struct {
	// Threshold is the consecutive frustrated message count that escalates.
	Threshold int
	// HistoryWindow is how many trailing messages are scanned for a staff
	// reset boundary.
	HistoryWindow int
	// NoStaffWindow is the trailing slice analyzed when no staff message
	// appears in the scanned window.
	NoStaffWindow int
}

// FrustrationAnalyzer scans recent history for sustained frustration.
type FrustrationAnalyzer struct {
	sentiment ai.SentimentClassifier
	config    FrustrationConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewFrustrationAnalyzer creates a frustration analyzer.
func NewFrustrationAnalyzer(sentiment ai.SentimentClassifier, config FrustrationConfig, m *metrics.Metrics, logger zerolog.Logger) *FrustrationAnalyzer {
	if config.Threshold <= 0 {
		config.Threshold = 3
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = 15
	}
	if config.NoStaffWindow <= 0 {
		config.NoStaffWindow = 10
	}
	return &FrustrationAnalyzer{
		sentiment: sentiment,
		config:    config,
		metrics:   m,
		logger:    logger.With().Str("component", "frustration-analyzer").Logger(),
	}
}

// Analyze classifies the current message and, when it reads as
// frustrated, walks backward through recent customer messages counting
// the consecutive frustrated run. A staff message in the scanned window
// resets the run: only messages after the last staff intervention count.
// Classifier failures never escalate.
func (a *FrustrationAnalyzer) Analyze(ctx context.Context, currentMessage string, history []models.ChatMessage) models.FrustrationAnalysis {
	current, err := a.sentiment.ClassifySentiment(ctx, currentMessage)
	if err != nil {
		a.logger.Warn().Err(err).Msg("sentiment classification failed for current message")
		return models.FrustrationAnalysis{}
	}
	if current == nil {
		a.logger.Debug().Msg("no usable sentiment verdict for current message")
		return models.FrustrationAnalysis{}
	}

	if current.Category != models.SentimentFrustrated {
		return models.FrustrationAnalysis{}
	}

	scanned := tail(history, a.config.HistoryWindow)

	// Find the last staff message; an operator reply resets the run.
	lastStaff := -1
	for i := len(scanned) - 1; i >= 0; i-- {
		if scanned[i].Role == models.RoleStaff {
			lastStaff = i
			break
		}
	}

	var toAnalyze []models.ChatMessage
	if lastStaff >= 0 {
		toAnalyze = scanned[lastStaff+1:]
	} else {
		toAnalyze = tail(scanned, a.config.NoStaffWindow)
	}

	if a.metrics != nil {
		a.metrics.EscalationCheckLength.Observe(float64(len(toAnalyze)))
	}

	count := 1
	for i := len(toAnalyze) - 1; i >= 0; i-- {
		msg := toAnalyze[i]
		if msg.Role != models.RoleCustomer || msg.Content == currentMessage {
			continue
		}

		sentiment, err := a.sentiment.ClassifySentiment(ctx, msg.Content)
		if err != nil {
			a.logger.Warn().Err(err).Msg("sentiment classification failed during history scan")
			break
		}
		if sentiment == nil || sentiment.Category != models.SentimentFrustrated {
			break
		}
		count++
	}

	a.logger.Debug().Int("consecutive", count).Msg("frustration run counted")

	return models.FrustrationAnalysis{
		ShouldEscalate:   count >= a.config.Threshold,
		ConsecutiveCount: count,
	}
}

// tail returns at most n trailing elements of s.
func tail(s []models.ChatMessage, n int) []models.ChatMessage {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
