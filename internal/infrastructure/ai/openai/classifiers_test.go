package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/infrastructure/ai/openai"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
)

// newModelServer returns a client wired to a fake chat-completions
// endpoint that always answers with the given assistant content.
func newModelServer(t *testing.T, content string) *openai.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	client, err := openai.NewClient(&openai.ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o",
	})
	require.NoError(t, err)
	return client
}

func newFailingServer(t *testing.T, status int) *openai.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error":{"message":"overloaded"}}`)
	}))
	t.Cleanup(srv.Close)

	client, err := openai.NewClient(&openai.ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := openai.NewClient(&openai.ClientConfig{})
	assert.Error(t, err)

	_, err = openai.NewClient(nil)
	assert.Error(t, err)
}

func TestSentimentClassifier(t *testing.T) {
	// Arrange
	client := newModelServer(t, `{"score": 8, "category": "frustrated", "description": "angry tone"}`)
	classifier := openai.NewSentimentClassifier(client)

	// Act
	verdict, err := classifier.ClassifySentiment(context.Background(), "this is infuriating")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, 8, verdict.Score)
	assert.Equal(t, models.SentimentFrustrated, verdict.Category)
	assert.Equal(t, "angry tone", verdict.Description)
}

func TestSentimentClassifierStripsCodeFences(t *testing.T) {
	// Arrange: models wrap JSON in markdown fences often enough that the
	// parser has to cope.
	client := newModelServer(t, "```json\n{\"score\": 3, \"category\": \"positive\"}\n```")
	classifier := openai.NewSentimentClassifier(client)

	// Act
	verdict, err := classifier.ClassifySentiment(context.Background(), "thanks!")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, 3, verdict.Score)
	assert.Equal(t, models.SentimentPositive, verdict.Category)
}

func TestSentimentClassifierClampsScore(t *testing.T) {
	// Arrange
	client := newModelServer(t, `{"score": 27, "category": "frustrated"}`)
	classifier := openai.NewSentimentClassifier(client)

	// Act
	verdict, err := classifier.ClassifySentiment(context.Background(), "!!!")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, verdict.Score)
}

func TestSentimentClassifierDerivesCategoryFromScore(t *testing.T) {
	// Arrange: the model strayed from the enum.
	client := newModelServer(t, `{"score": 9, "category": "very angry"}`)
	classifier := openai.NewSentimentClassifier(client)

	// Act
	verdict, err := classifier.ClassifySentiment(context.Background(), "terrible")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.SentimentFrustrated, verdict.Category)
}

func TestSentimentClassifierUnparseableAnswer(t *testing.T) {
	// Arrange
	client := newModelServer(t, "I think the customer sounds upset.")
	classifier := openai.NewSentimentClassifier(client)

	// Act: prose instead of JSON is a nil verdict, not an error.
	verdict, err := classifier.ClassifySentiment(context.Background(), "hmm")

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, verdict)
}

func TestSentimentClassifierServerError(t *testing.T) {
	// Arrange
	client := newFailingServer(t, http.StatusServiceUnavailable)
	classifier := openai.NewSentimentClassifier(client)

	// Act
	verdict, err := classifier.ClassifySentiment(context.Background(), "hello")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, verdict)
}

func TestIntentClassifier(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"true", true},
		{"True", true},
		{" TRUE \n", true},
		{"false", false},
		{"probably true", false},
		{"yes", false},
	}

	for _, tt := range tests {
		client := newModelServer(t, tt.answer)
		classifier := openai.NewIntentClassifier(client)

		got, err := classifier.DetectsHumanRequest(context.Background(), "let me talk to someone")

		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "answer %q", tt.answer)
	}
}

func TestIntentClassifierServerError(t *testing.T) {
	// Arrange
	client := newFailingServer(t, http.StatusInternalServerError)
	classifier := openai.NewIntentClassifier(client)

	// Act
	got, err := classifier.DetectsHumanRequest(context.Background(), "human please")

	// Assert
	assert.Error(t, err)
	assert.False(t, got)
}

func TestLanguageClassifier(t *testing.T) {
	// Arrange
	client := newModelServer(t, `{"code": "ES", "confidence": 0.93}`)
	classifier := openai.NewLanguageClassifier(client)

	// Act
	verdict, err := classifier.DetectLanguage(context.Background(), "hola, buenos días")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "es", verdict.Code)
	assert.InDelta(t, 0.93, verdict.Confidence, 0.0001)
}

func TestLanguageClassifierClampsConfidence(t *testing.T) {
	// Arrange
	client := newModelServer(t, `{"code": "en", "confidence": 1.7}`)
	classifier := openai.NewLanguageClassifier(client)

	// Act
	verdict, err := classifier.DetectLanguage(context.Background(), "hello")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, verdict.Confidence)
}

func TestLanguageClassifierUnparseableAnswerIsError(t *testing.T) {
	// Arrange: unlike sentiment, language callers need the error to fall
	// back to the existing preference.
	client := newModelServer(t, "it looks like Spanish to me")
	classifier := openai.NewLanguageClassifier(client)

	// Act
	verdict, err := classifier.DetectLanguage(context.Background(), "hola")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, verdict)
}

func TestClassifierCallsAreCounted(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"true"}}]}`)
	}))
	t.Cleanup(srv.Close)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	client, err := openai.NewClient(&openai.ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Metrics: m,
	})
	require.NoError(t, err)

	// Act
	_, err = openai.NewIntentClassifier(client).DetectsHumanRequest(context.Background(), "agent please")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierRequests.WithLabelValues("intent", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ClassifierRequests.WithLabelValues("intent", "error")))
}

func TestClassifierFailuresAreCounted(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	client, err := openai.NewClient(&openai.ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Metrics: m,
	})
	require.NoError(t, err)

	// Act
	_, err = openai.NewSentimentClassifier(client).ClassifySentiment(context.Background(), "ugh")

	// Assert
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierRequests.WithLabelValues("sentiment", "error")))
}

func TestLanguageClassifierEmptyCodeIsError(t *testing.T) {
	// Arrange
	client := newModelServer(t, `{"code": "", "confidence": 0.9}`)
	classifier := openai.NewLanguageClassifier(client)

	// Act
	verdict, err := classifier.DetectLanguage(context.Background(), "hmm")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, verdict)
}
