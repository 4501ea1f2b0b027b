// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ProcessMessageRequest represents an inbound customer message to evaluate
// for escalation.
type ProcessMessageRequest struct {
	BusinessID    string `json:"businessId" binding:"required"`
	SessionID     string `json:"sessionId" binding:"required"`
	CustomerPhone string `json:"customerPhone" binding:"required"`
	CustomerName  string `json:"customerName,omitempty"`
	Message       string `json:"message" binding:"required,min=1,max=32000"`
	ButtonID      string `json:"buttonId,omitempty"`
}

// AdminMessageRequest represents an inbound message from an admin phone.
type AdminMessageRequest struct {
	AdminPhone string `json:"adminPhone" binding:"required"`
	Message    string `json:"message"`
	ButtonID   string `json:"buttonId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
}

// ResolveNotificationRequest represents the request for resolving a
// notification with a terminal status.
type ResolveNotificationRequest struct {
	Status string `json:"status" binding:"required"`
}
