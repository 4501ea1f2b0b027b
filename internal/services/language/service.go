// Package language resolves the conversation language from customer
// messages, conservatively: system payloads and short messages never
// change an established language.
package language

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/core/ai"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
)

const (
	// DefaultLanguage is used when nothing can be detected.
	DefaultLanguage = "en"
)

// supportedLanguages lists the codes the bot can answer in.
var supportedLanguages = map[string]bool{
	"en": true,
	"es": true,
}

// System payloads the channel layer produces. Running language detection
// on these corrupts the preference, so they are filtered out first.
var (
	uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	systemPatterns = []*regexp.Regexp{
		// Time slot button payloads
		regexp.MustCompile(`^slot_\d+_`),
		// Date button payloads
		regexp.MustCompile(`^day_\d{4}-\d{2}-\d{2}$`),
		// Standard button values
		regexp.MustCompile(`^(choose_another_day|choose_different_date|contact_support|confirm_quote|edit_quote|contact_us|try_again|no_availability)$`),
		// Time displays (12 PM, 1:30 AM)
		regexp.MustCompile(`(?i)^\d{1,2}(?::\d{2})?\s*[AP]M?$`),
		// Single tokens of word characters, likely system codes
		regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),
	}
)

// Resolution describes the language decision for one message.
type Resolution struct {
	Language   string
	WasChanged bool
	Previous   string
	Reason     string
}

// Config tunes the resolution policy.
type Config struct {
	// ShortMessageLength is the trimmed length at or below which a
	// message is too ambiguous to detect from.
	ShortMessageLength int
	// SwitchConfidence is the classifier confidence required to switch
	// an established language.
	SwitchConfidence float64
}

// Service resolves conversation language.
type Service struct {
	classifier ai.LanguageClassifier
	config     Config
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewService creates a language resolution service.
func NewService(classifier ai.LanguageClassifier, config Config, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if config.ShortMessageLength <= 0 {
		config.ShortMessageLength = 8
	}
	if config.SwitchConfidence <= 0 {
		config.SwitchConfidence = 0.8
	}
	return &Service{
		classifier: classifier,
		config:     config,
		metrics:    m,
		logger:     logger.With().Str("component", "language").Logger(),
	}
}

// IsSystemGenerated reports whether a message is a button or system
// payload rather than natural language.
func IsSystemGenerated(message string) bool {
	trimmed := strings.TrimSpace(message)
	if uuidPattern.MatchString(trimmed) {
		return true
	}
	for _, pattern := range systemPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// Resolve decides the conversation language after one customer message.
// existing is the current preference ("" when none is set yet);
// collectingAddress suspends detection because address text is full of
// street names that fool the classifier.
func (s *Service) Resolve(ctx context.Context, message, existing string, collectingAddress bool) Resolution {
	keep := func(reason string) Resolution {
		lang := existing
		if lang == "" {
			lang = DefaultLanguage
		}
		return Resolution{Language: lang, WasChanged: existing == "", Previous: existing, Reason: reason}
	}

	if collectingAddress {
		return keep("address collection in progress")
	}
	if IsSystemGenerated(message) {
		return keep("system message")
	}

	trimmed := strings.TrimSpace(message)

	if existing != "" {
		if len([]rune(trimmed)) <= s.config.ShortMessageLength {
			return keep("short message")
		}

		detection, err := s.classifier.DetectLanguage(ctx, message)
		if err != nil {
			s.logger.Warn().Err(err).Msg("language detection failed, preserving existing")
			return keep("detection error")
		}
		if supportedLanguages[detection.Code] &&
			detection.Code != existing &&
			detection.Confidence >= s.config.SwitchConfidence {
			s.logger.Info().
				Str("from", existing).
				Str("to", detection.Code).
				Float64("confidence", detection.Confidence).
				Msg("language switch")
			if s.metrics != nil {
				s.metrics.LanguageSwitches.Inc()
			}
			return Resolution{Language: detection.Code, WasChanged: true, Previous: existing, Reason: "high-confidence switch"}
		}
		return keep("insufficient confidence for switch")
	}

	// First-time detection.
	if len([]rune(trimmed)) <= s.config.ShortMessageLength {
		return Resolution{Language: DefaultLanguage, WasChanged: true, Reason: "first message too short, used default"}
	}

	detection, err := s.classifier.DetectLanguage(ctx, message)
	if err != nil || !supportedLanguages[detection.Code] {
		if err != nil {
			s.logger.Warn().Err(err).Msg("first-time language detection failed, using default")
		}
		return Resolution{Language: DefaultLanguage, WasChanged: true, Reason: "detection unavailable, used default"}
	}

	return Resolution{Language: detection.Code, WasChanged: true, Reason: "initial detection"}
}

