// Package models contains domain models for the Skedy Escalation Service.
package models

import "time"

// SenderRole identifies who produced a conversation message.
type SenderRole string

const (
	// RoleCustomer represents a message from the customer.
	RoleCustomer SenderRole = "customer"
	// RoleBot represents a message generated by the bot.
	RoleBot SenderRole = "bot"
	// RoleStaff represents a message from a human operator.
	RoleStaff SenderRole = "staff"
)

// ChatMessage represents a single message in a conversation history.
type ChatMessage struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	SessionID string     `json:"sessionId" bson:"sessionId"`
	Role      SenderRole `json:"role" bson:"role"`
	Content   string     `json:"content" bson:"content"`
	// DisplayName is the sender name as shown in the channel, when known.
	DisplayName string    `json:"displayName,omitempty" bson:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// NewChatMessage creates a message with the current timestamp.
func NewChatMessage(sessionID string, role SenderRole, content string) *ChatMessage {
	return &ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// ConversationContext carries everything the escalation engine needs to
// evaluate an incoming customer message.
type ConversationContext struct {
	SessionID string
	// BusinessID identifies the business the conversation belongs to.
	BusinessID string
	// CustomerPhone is the customer's normalized phone number.
	CustomerPhone string
	// CustomerName is the channel profile name, when the channel supplied one.
	CustomerName string
	// Language is the resolved conversation language code ("en", "es").
	Language string
	// History is the conversation so far, oldest first, excluding the
	// message currently being evaluated.
	History []ChatMessage
}
