package openai

import (
	"context"
	"strings"
)

const humanRequestSystemPrompt = `You decide whether a customer support message is an explicit request to speak with a human being (an agent, a person, staff, "stop the bot", etc).
Questions about services, prices or bookings are NOT requests for a human.
Answer with exactly one word: "true" or "false".`

// IntentClassifier detects explicit human-assistance requests.
type IntentClassifier struct {
	client *Client
}

// NewIntentClassifier creates an intent classifier.
func NewIntentClassifier(client *Client) *IntentClassifier {
	return &IntentClassifier{client: client}
}

// DetectsHumanRequest returns true only on a confident positive verdict.
// Anything other than a literal "true" reads as false.
func (c *IntentClassifier) DetectsHumanRequest(ctx context.Context, message string) (bool, error) {
	content, err := c.client.Complete(ctx, &CompletionRequest{
		System:      humanRequestSystemPrompt,
		User:        message,
		Temperature: 0.1,
		MaxTokens:   10,
		Kind:        "intent",
	})
	if err != nil {
		return false, err
	}

	return strings.EqualFold(strings.TrimSpace(content), "true"), nil
}
