// Package ai defines the classifier interfaces backed by chat-completion
// models.
package ai

import (
	"context"

	"github.com/skedy/escalation-service/internal/domain/models"
)

// SentimentClassifier scores a customer message for frustration.
type SentimentClassifier interface {
	// ClassifySentiment analyzes a single message. A nil Sentiment with a
	// nil error means the classifier could not produce a usable verdict;
	// callers treat that as not frustrated.
	ClassifySentiment(ctx context.Context, message string) (*models.Sentiment, error)
}

// IntentClassifier detects an explicit request for human assistance.
type IntentClassifier interface {
	// DetectsHumanRequest returns true only on a confident positive
	// verdict. Any classifier failure reads as false.
	DetectsHumanRequest(ctx context.Context, message string) (bool, error)
}

// LanguageClassifier identifies the language of a message.
type LanguageClassifier interface {
	// DetectLanguage returns an ISO 639-1 code with a confidence in [0,1].
	DetectLanguage(ctx context.Context, message string) (*models.LanguageDetection, error)
}
