package openai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/skedy/escalation-service/internal/domain/models"
)

const sentimentSystemPrompt = `You analyze the emotional tone of customer support messages.
Score the message on a 1-10 frustration scale where 1 is calm and 10 is furious.
Respond with JSON only, no prose: {"score": <1-10>, "category": "frustrated"|"neutral"|"positive", "description": "<one short sentence>"}`

// SentimentClassifier scores messages with a chat-completion model.
type SentimentClassifier struct {
	client *Client
}

// NewSentimentClassifier creates a sentiment classifier.
func NewSentimentClassifier(client *Client) *SentimentClassifier {
	return &SentimentClassifier{client: client}
}

type sentimentPayload struct {
	Score       int    `json:"score"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ClassifySentiment analyzes a single message. A nil result with a nil
// error means the model answered but not in a usable shape.
func (s *SentimentClassifier) ClassifySentiment(ctx context.Context, message string) (*models.Sentiment, error) {
	content, err := s.client.Complete(ctx, &CompletionRequest{
		System:      sentimentSystemPrompt,
		User:        message,
		Temperature: 0.3,
		MaxTokens:   150,
		Kind:        "sentiment",
	})
	if err != nil {
		return nil, err
	}

	var payload sentimentPayload
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &payload); err != nil {
		return nil, nil
	}

	score := payload.Score
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	category := models.SentimentCategory(strings.ToLower(payload.Category))
	switch category {
	case models.SentimentFrustrated, models.SentimentNeutral, models.SentimentPositive:
	default:
		// Model strayed from the enum; derive the bucket from the score.
		category = models.CategoryForScore(score)
	}

	return &models.Sentiment{
		Score:       score,
		Category:    category,
		Description: payload.Description,
	}, nil
}
