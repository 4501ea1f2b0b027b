// Package whatsapp provides the outbound WhatsApp channel implementation
// on top of the Graph API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender sends messages to WhatsApp numbers.
type Sender interface {
	// SendText sends a free-text message. Returns the provider message ID.
	SendText(ctx context.Context, toPhone, text string) (string, error)

	// SendTemplate sends a pre-approved template with positional body
	// parameters. Returns the provider message ID.
	SendTemplate(ctx context.Context, toPhone, templateName, languageCode string, headerParams, bodyParams []string) (string, error)
}

// Config holds Graph API connection settings.
type Config struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	HTTPClient    *http.Client
}

// GraphSender implements Sender against the Meta Graph API.
type GraphSender struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewGraphSender creates a Graph API sender.
func NewGraphSender(config *Config) (*GraphSender, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.PhoneNumberID == "" {
		return nil, fmt.Errorf("phone number ID is required")
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://graph.facebook.com"
	}
	version := config.APIVersion
	if version == "" {
		version = "v23.0"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &GraphSender{
		endpoint:    fmt.Sprintf("%s/%s/%s/messages", baseURL, version, config.PhoneNumberID),
		accessToken: config.AccessToken,
		httpClient:  httpClient,
	}, nil
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// TextBodyMaxLength is the Graph API limit on free-text bodies.
// Longer bodies are truncated rather than rejected.
const TextBodyMaxLength = 1024

// SendText sends a free-text message.
func (s *GraphSender) SendText(ctx context.Context, toPhone, text string) (string, error) {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                toPhone,
		"type":              "text",
		"text": map[string]interface{}{
			"body": truncateBody(text, TextBodyMaxLength),
		},
	}
	return s.post(ctx, payload)
}

func truncateBody(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}

// SendTemplate sends a pre-approved template message.
func (s *GraphSender) SendTemplate(ctx context.Context, toPhone, templateName, languageCode string, headerParams, bodyParams []string) (string, error) {
	components := make([]map[string]interface{}, 0, 2)
	if params := textParameters(headerParams); len(params) > 0 {
		components = append(components, map[string]interface{}{
			"type":       "header",
			"parameters": params,
		})
	}
	if params := textParameters(bodyParams); len(params) > 0 {
		components = append(components, map[string]interface{}{
			"type":       "body",
			"parameters": params,
		})
	}

	template := map[string]interface{}{
		"name": templateName,
		"language": map[string]interface{}{
			"code": languageCode,
		},
	}
	if len(components) > 0 {
		template["components"] = components
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                toPhone,
		"type":              "template",
		"template":          template,
	}
	return s.post(ctx, payload)
}

// textParameters builds positional text parameters, dropping empties:
// the Graph API rejects templates with blank parameter values.
func textParameters(values []string) []map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		params = append(params, map[string]interface{}{
			"type": "text",
			"text": v,
		})
	}
	return params
}

func (s *GraphSender) post(ctx context.Context, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var sendResp sendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if sendResp.Error != nil {
			return "", fmt.Errorf("graph api error %d: %s", sendResp.Error.Code, sendResp.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if len(sendResp.Messages) == 0 {
		return "", fmt.Errorf("no message ID in response")
	}

	return sendResp.Messages[0].ID, nil
}
