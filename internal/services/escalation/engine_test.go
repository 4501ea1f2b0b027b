package escalation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/services/escalation"
)

// mockNotifier is a mock implementation of escalation.Notifier.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Dispatch(ctx context.Context, convCtx *models.ConversationContext, reason models.EscalationReason, message string) (*models.Notification, error) {
	args := m.Called(ctx, convCtx, reason, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func newEngine(intent *mockIntentClassifier, sentiment *mockSentimentClassifier, notifier *mockNotifier) *escalation.Engine {
	detector := escalation.NewDetector(intent, zerolog.Nop())
	frustration := escalation.NewFrustrationAnalyzer(sentiment, escalation.FrustrationConfig{}, nil, zerolog.Nop())
	return escalation.NewEngine(detector, frustration, notifier, nil, zerolog.Nop())
}

func TestEngineCheckBlankMessage(t *testing.T) {
	// Arrange: a blank message short-circuits before any classifier call.
	intent := &mockIntentClassifier{}
	sentiment := &mockSentimentClassifier{}
	engine := newEngine(intent, sentiment, &mockNotifier{})

	// Act
	check := engine.Check(context.Background(), "   \t ", &models.ConversationContext{})

	// Assert
	assert.False(t, check.Escalate)
	intent.AssertNotCalled(t, "DetectsHumanRequest", mock.Anything, mock.Anything)
	sentiment.AssertNotCalled(t, "ClassifySentiment", mock.Anything, mock.Anything)
}

func TestEngineCheckMediaHasPriority(t *testing.T) {
	// Arrange: media verdicts never cost an AI call, even for messages
	// that would also read as a human request.
	intent := &mockIntentClassifier{}
	sentiment := &mockSentimentClassifier{}
	engine := newEngine(intent, sentiment, &mockNotifier{})

	// Act
	check := engine.Check(context.Background(), "[IMAGE] talk to a human", &models.ConversationContext{Language: "en"})

	// Assert
	assert.True(t, check.Escalate)
	assert.Equal(t, models.ReasonMediaRedirect, check.Reason)
	assert.Equal(t, escalation.Localize("en").MediaRedirectUserResponse, check.CustomerResponse)
	intent.AssertNotCalled(t, "DetectsHumanRequest", mock.Anything, mock.Anything)
}

func TestEngineCheckHumanRequestBeforeFrustration(t *testing.T) {
	// Arrange
	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(true, nil)
	sentiment := &mockSentimentClassifier{}
	engine := newEngine(intent, sentiment, &mockNotifier{})

	// Act
	check := engine.Check(context.Background(), "get me a person", &models.ConversationContext{Language: "en"})

	// Assert: a positive human request verdict skips sentiment entirely.
	assert.True(t, check.Escalate)
	assert.Equal(t, models.ReasonHumanRequest, check.Reason)
	assert.Empty(t, check.CustomerResponse)
	sentiment.AssertNotCalled(t, "ClassifySentiment", mock.Anything, mock.Anything)
}

func TestEngineCheckFrustration(t *testing.T) {
	// Arrange
	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(false, nil)
	sentiment := &mockSentimentClassifier{}
	sentiment.On("ClassifySentiment", mock.Anything, mock.Anything).Return(frustrated(), nil)
	engine := newEngine(intent, sentiment, &mockNotifier{})

	convCtx := &models.ConversationContext{
		Language: "es",
		History: []models.ChatMessage{
			customerMsg("no funciona"),
			customerMsg("sigue sin funcionar"),
		},
	}

	// Act
	check := engine.Check(context.Background(), "esto es inaceptable", convCtx)

	// Assert
	assert.True(t, check.Escalate)
	assert.Equal(t, models.ReasonFrustration, check.Reason)
	assert.Equal(t, escalation.Localize("es").FrustrationDetected, check.CustomerResponse)
}

func TestEngineHandleDispatchesNotification(t *testing.T) {
	// Arrange
	notification := models.NewNotification("biz-1", "sess-1", models.ReasonHumanRequest, "en")
	notifier := &mockNotifier{}
	notifier.On("Dispatch", mock.Anything, mock.Anything, models.ReasonHumanRequest, "I need a human").
		Return(notification, nil)

	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(true, nil)
	engine := newEngine(intent, &mockSentimentClassifier{}, notifier)

	// Act
	result := engine.Handle(context.Background(), "I need a human", &models.ConversationContext{
		SessionID: "sess-1", BusinessID: "biz-1", Language: "en",
	})

	// Assert: the generic acknowledgement fills the empty human_request
	// response.
	assert.True(t, result.Escalated)
	assert.Equal(t, models.ReasonHumanRequest, result.Reason)
	assert.Equal(t, escalation.Localize("en").UserResponse, result.Response)
	assert.Equal(t, notification.ID, result.NotificationID)
	notifier.AssertExpectations(t)
}

func TestEngineHandleSpanishHumanRequest(t *testing.T) {
	// Arrange
	notification := models.NewNotification("biz-1", "sess-1", models.ReasonHumanRequest, "es")
	notifier := &mockNotifier{}
	notifier.On("Dispatch", mock.Anything, mock.Anything, models.ReasonHumanRequest, "Quiero hablar con una persona").
		Return(notification, nil)

	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(true, nil)
	sentiment := &mockSentimentClassifier{}
	engine := newEngine(intent, sentiment, notifier)

	// Act
	result := engine.Handle(context.Background(), "Quiero hablar con una persona", &models.ConversationContext{
		SessionID: "sess-1", BusinessID: "biz-1", Language: "es",
	})

	// Assert: the acknowledgement comes back in the conversation language.
	assert.True(t, result.Escalated)
	assert.Equal(t, models.ReasonHumanRequest, result.Reason)
	assert.Equal(t, escalation.Localize("es").UserResponse, result.Response)
	sentiment.AssertNotCalled(t, "ClassifySentiment", mock.Anything, mock.Anything)
	notifier.AssertExpectations(t)
}

func TestEngineHandleDispatchFailureDowngrades(t *testing.T) {
	// Arrange: if the notification cannot be produced the bot keeps
	// answering instead of going silent.
	notifier := &mockNotifier{}
	notifier.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("db down"))

	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(true, nil)
	engine := newEngine(intent, &mockSentimentClassifier{}, notifier)

	// Act
	result := engine.Handle(context.Background(), "human please", &models.ConversationContext{Language: "en"})

	// Assert
	assert.False(t, result.Escalated)
	assert.Empty(t, result.NotificationID)
}

func TestEngineHandleNoTargetDowngrades(t *testing.T) {
	// Arrange: nil notification with nil error means no delivery target
	// could be resolved.
	notifier := &mockNotifier{}
	notifier.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(true, nil)
	engine := newEngine(intent, &mockSentimentClassifier{}, notifier)

	// Act
	result := engine.Handle(context.Background(), "human please", &models.ConversationContext{Language: "en"})

	// Assert
	assert.False(t, result.Escalated)
}

func TestEngineHandleNotEscalated(t *testing.T) {
	// Arrange
	notifier := &mockNotifier{}
	intent := &mockIntentClassifier{}
	intent.On("DetectsHumanRequest", mock.Anything, mock.Anything).Return(false, nil)
	sentiment := &mockSentimentClassifier{}
	sentiment.On("ClassifySentiment", mock.Anything, mock.Anything).Return(neutral(), nil)
	engine := newEngine(intent, sentiment, notifier)

	// Act
	result := engine.Handle(context.Background(), "what are your hours?", &models.ConversationContext{Language: "en"})

	// Assert
	assert.False(t, result.Escalated)
	notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLocalizeFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, escalation.Localize("en"), escalation.Localize("fr"))
	assert.Equal(t, escalation.Localize("en"), escalation.Localize(""))
	assert.NotEqual(t, escalation.Localize("en"), escalation.Localize("es"))
}
