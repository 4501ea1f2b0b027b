package models

import "time"

// SessionMode says who is currently driving the conversation.
type SessionMode string

const (
	// ModeBot means the bot is handling the conversation.
	ModeBot SessionMode = "bot"
	// ModeProxy means a human operator has taken over and messages are
	// relayed between operator and customer.
	ModeProxy SessionMode = "proxy"
)

// ChatSession represents an ongoing conversation with a customer.
type ChatSession struct {
	ID            string      `json:"id" bson:"_id"`
	BusinessID    string      `json:"businessId" bson:"businessId"`
	CustomerPhone string      `json:"customerPhone" bson:"customerPhone"`
	// UserID links the session to a registered user account, when one exists.
	UserID   string      `json:"userId,omitempty" bson:"userId,omitempty"`
	Language string      `json:"language,omitempty" bson:"language,omitempty"`
	Mode     SessionMode `json:"mode" bson:"mode"`
	// CollectingAddress marks the session as mid address collection, which
	// suspends language detection.
	CollectingAddress bool      `json:"collectingAddress,omitempty" bson:"collectingAddress,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// InProxyMode reports whether an operator currently owns the session.
func (s *ChatSession) InProxyMode() bool {
	return s.Mode == ModeProxy
}
