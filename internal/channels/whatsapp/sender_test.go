package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skedy/escalation-service/internal/channels/whatsapp"
)

func newGraphServer(t *testing.T, handler func(t *testing.T, body map[string]interface{}) (int, string)) (*httptest.Server, *whatsapp.GraphSender) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v23.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		status, response := handler(t, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	sender, err := whatsapp.NewGraphSender(&whatsapp.Config{
		BaseURL:       srv.URL,
		APIVersion:    "v23.0",
		PhoneNumberID: "12345",
		AccessToken:   "test-token",
	})
	require.NoError(t, err)

	return srv, sender
}

func TestNewGraphSenderRequiresCredentials(t *testing.T) {
	// Act
	_, err := whatsapp.NewGraphSender(&whatsapp.Config{AccessToken: "token"})

	// Assert
	assert.Error(t, err)

	// Act
	_, err = whatsapp.NewGraphSender(&whatsapp.Config{PhoneNumberID: "12345"})

	// Assert
	assert.Error(t, err)

	// Act
	_, err = whatsapp.NewGraphSender(nil)

	// Assert
	assert.Error(t, err)
}

func TestSendText(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		assert.Equal(t, "whatsapp", body["messaging_product"])
		assert.Equal(t, "+15551234567", body["to"])
		assert.Equal(t, "text", body["type"])

		text, ok := body["text"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "hello there", text["body"])

		return http.StatusOK, `{"messages":[{"id":"wamid.text.1"}]}`
	})

	// Act
	messageID, err := sender.SendText(context.Background(), "+15551234567", "hello there")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "wamid.text.1", messageID)
}

func TestSendTemplate(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		assert.Equal(t, "whatsapp", body["messaging_product"])
		assert.Equal(t, "+15551234567", body["to"])
		assert.Equal(t, "template", body["type"])

		template, ok := body["template"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "escalation_alert", template["name"])

		language, ok := template["language"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "en", language["code"])

		components, ok := template["components"].([]interface{})
		require.True(t, ok)
		require.Len(t, components, 2)

		header := components[0].(map[string]interface{})
		assert.Equal(t, "header", header["type"])
		headerParams := header["parameters"].([]interface{})
		require.Len(t, headerParams, 1)
		assert.Equal(t, "Jane Doe", headerParams[0].(map[string]interface{})["text"])

		bodyComponent := components[1].(map[string]interface{})
		assert.Equal(t, "body", bodyComponent["type"])
		bodyParams := bodyComponent["parameters"].([]interface{})
		require.Len(t, bodyParams, 2)
		assert.Equal(t, "text", bodyParams[0].(map[string]interface{})["type"])
		assert.Equal(t, "I need help", bodyParams[1].(map[string]interface{})["text"])

		return http.StatusOK, `{"messages":[{"id":"wamid.template.1"}]}`
	})

	// Act
	messageID, err := sender.SendTemplate(context.Background(), "+15551234567", "escalation_alert", "en",
		[]string{"Jane Doe"}, []string{"Jane Doe", "I need help"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "wamid.template.1", messageID)
}

func TestSendTemplateWithoutParametersOmitsComponents(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		template, ok := body["template"].(map[string]interface{})
		require.True(t, ok)
		_, hasComponents := template["components"]
		assert.False(t, hasComponents)

		return http.StatusOK, `{"messages":[{"id":"wamid.template.2"}]}`
	})

	// Act
	messageID, err := sender.SendTemplate(context.Background(), "+15551234567", "escalation_alert", "en", nil, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "wamid.template.2", messageID)
}

func TestSendTextTruncatesLongBodies(t *testing.T) {
	// Arrange
	var gotBody string
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		gotBody = body["text"].(map[string]interface{})["body"].(string)
		return http.StatusOK, `{"messages":[{"id":"wamid.text.3"}]}`
	})
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}

	// Act
	_, err := sender.SendText(context.Background(), "+15551234567", string(long))

	// Assert
	require.NoError(t, err)
	assert.Len(t, []rune(gotBody), whatsapp.TextBodyMaxLength)
	assert.Equal(t, "...", gotBody[len(gotBody)-3:])
}

func TestSendTemplateDropsEmptyParameters(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		template := body["template"].(map[string]interface{})
		components, ok := template["components"].([]interface{})
		require.True(t, ok)
		require.Len(t, components, 1)

		bodyComponent := components[0].(map[string]interface{})
		assert.Equal(t, "body", bodyComponent["type"])
		params := bodyComponent["parameters"].([]interface{})
		require.Len(t, params, 1)
		assert.Equal(t, "kept", params[0].(map[string]interface{})["text"])

		return http.StatusOK, `{"messages":[{"id":"wamid.template.3"}]}`
	})

	// Act
	_, err := sender.SendTemplate(context.Background(), "+15551234567", "escalation_alert", "en",
		[]string{""}, []string{"", "kept"})

	// Assert
	require.NoError(t, err)
}

func TestSendTextGraphAPIError(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		return http.StatusBadRequest, `{"error":{"message":"Invalid parameter","code":100}}`
	})

	// Act
	messageID, err := sender.SendText(context.Background(), "+15551234567", "hello")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph api error 100")
	assert.Contains(t, err.Error(), "Invalid parameter")
	assert.Empty(t, messageID)
}

func TestSendTextUnexpectedStatus(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		return http.StatusInternalServerError, `{}`
	})

	// Act
	_, err := sender.SendText(context.Background(), "+15551234567", "hello")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
}

func TestSendTextMissingMessageID(t *testing.T) {
	// Arrange
	_, sender := newGraphServer(t, func(t *testing.T, body map[string]interface{}) (int, string) {
		return http.StatusOK, `{"messages":[]}`
	})

	// Act
	_, err := sender.SendText(context.Background(), "+15551234567", "hello")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no message ID")
}
