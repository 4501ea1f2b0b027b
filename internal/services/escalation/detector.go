// Package escalation implements the multi-signal escalation decision
// engine: media redirects, explicit human requests and sustained
// frustration, in that priority order.
package escalation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/core/ai"
)

// Media markers the channel layer embeds when a customer sends
// non-text content.
const (
	MarkerImage    = "[IMAGE]"
	MarkerVideo    = "[VIDEO]"
	MarkerDocument = "[DOCUMENT]"
	MarkerSticker  = "[STICKER]"
	MarkerAudio    = "[AUDIO]"
)

// HasMediaContent reports whether a message carries content the bot must
// redirect to a human. Stickers and audio are handled by the bot and do
// not count.
func HasMediaContent(message string) bool {
	return strings.Contains(message, MarkerImage) ||
		strings.Contains(message, MarkerVideo) ||
		strings.Contains(message, MarkerDocument)
}

// HasStickerContent reports whether a message contains a sticker.
func HasStickerContent(message string) bool {
	return strings.Contains(message, MarkerSticker)
}

// Detector answers the individual trigger questions.
type Detector struct {
	intent ai.IntentClassifier
	logger zerolog.Logger
}

// NewDetector creates a detector backed by the given intent classifier.
func NewDetector(intent ai.IntentClassifier, logger zerolog.Logger) *Detector {
	return &Detector{
		intent: intent,
		logger: logger.With().Str("component", "escalation-detector").Logger(),
	}
}

// DetectsHumanRequest asks the classifier whether the customer explicitly
// requested a human. Classifier failures read as false so an AI outage
// never escalates on its own.
func (d *Detector) DetectsHumanRequest(ctx context.Context, message string) bool {
	isRequest, err := d.intent.DetectsHumanRequest(ctx, message)
	if err != nil {
		d.logger.Warn().Err(err).Msg("human request detection failed, assuming no")
		return false
	}
	return isRequest
}
