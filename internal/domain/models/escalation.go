package models

// SentimentCategory buckets a classified customer message.
type SentimentCategory string

const (
	// SentimentFrustrated marks a message expressing anger or frustration.
	SentimentFrustrated SentimentCategory = "frustrated"
	// SentimentNeutral marks an emotionally flat message.
	SentimentNeutral SentimentCategory = "neutral"
	// SentimentPositive marks a satisfied or friendly message.
	SentimentPositive SentimentCategory = "positive"
)

// Sentiment is the result of classifying a single message.
type Sentiment struct {
	// Score is a 1-10 frustration scale where 1 is calm and 10 is furious.
	Score int `json:"score"`
	// Category is derived from the score when the classifier output is
	// inconsistent.
	Category    SentimentCategory `json:"category"`
	Description string            `json:"description,omitempty"`
}

// CategoryForScore maps a 1-10 score onto a sentiment bucket. Scores of
// seven and above are frustrated, four through six neutral, the rest
// positive.
func CategoryForScore(score int) SentimentCategory {
	switch {
	case score >= 7:
		return SentimentFrustrated
	case score >= 4:
		return SentimentNeutral
	default:
		return SentimentPositive
	}
}

// FrustrationAnalysis is the outcome of scanning recent history for
// sustained frustration.
type FrustrationAnalysis struct {
	ShouldEscalate   bool `json:"shouldEscalate"`
	ConsecutiveCount int  `json:"consecutiveCount"`
}

// EscalationCheck is the escalation engine's verdict on one message.
type EscalationCheck struct {
	Escalate bool             `json:"escalate"`
	Reason   EscalationReason `json:"reason,omitempty"`
	// CustomerResponse is the localized acknowledgement the bot should
	// send to the customer when Escalate is true.
	CustomerResponse string `json:"customerResponse,omitempty"`
}

// EscalationResult is what the engine returns after handling a message
// end to end, including notification delivery.
type EscalationResult struct {
	Escalated      bool             `json:"escalated"`
	Reason         EscalationReason `json:"reason,omitempty"`
	Response       string           `json:"response,omitempty"`
	NotificationID string           `json:"notificationId,omitempty"`
}

// LanguageDetection is a language classifier verdict for one message.
type LanguageDetection struct {
	// Code is an ISO 639-1 language code.
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}
