package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skedy/escalation-service/internal/domain/models"
)

const languageSystemPrompt = `You identify the language of a customer message.
Respond with JSON only: {"code": "<ISO 639-1 code>", "confidence": <0.0-1.0>}`

// LanguageClassifier identifies message language with a chat-completion model.
type LanguageClassifier struct {
	client *Client
}

// NewLanguageClassifier creates a language classifier.
func NewLanguageClassifier(client *Client) *LanguageClassifier {
	return &LanguageClassifier{client: client}
}

type languagePayload struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// DetectLanguage returns an ISO 639-1 code with a confidence in [0,1].
func (c *LanguageClassifier) DetectLanguage(ctx context.Context, message string) (*models.LanguageDetection, error) {
	content, err := c.client.Complete(ctx, &CompletionRequest{
		System:      languageSystemPrompt,
		User:        message,
		Temperature: 0.1,
		MaxTokens:   30,
		Kind:        "language",
	})
	if err != nil {
		return nil, err
	}

	var payload languagePayload
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &payload); err != nil {
		return nil, fmt.Errorf("unparseable language verdict: %w", err)
	}

	code := strings.ToLower(strings.TrimSpace(payload.Code))
	if code == "" {
		return nil, fmt.Errorf("empty language code in verdict")
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &models.LanguageDetection{Code: code, Confidence: confidence}, nil
}
