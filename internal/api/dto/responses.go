// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// ProcessMessageResponse represents the outcome of evaluating a customer
// message.
type ProcessMessageResponse struct {
	Escalated      bool   `json:"escalated"`
	Reason         string `json:"reason,omitempty"`
	Response       string `json:"response,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
	Language       string `json:"language"`
	ProxyForwarded bool   `json:"proxyForwarded"`
}

// AdminMessageResponse represents the outcome of routing an admin message.
type AdminMessageResponse struct {
	Handled    bool   `json:"handled"`
	Forwarded  bool   `json:"forwarded"`
	ProxyEnded bool   `json:"proxyEnded"`
	Response   string `json:"response,omitempty"`
}
