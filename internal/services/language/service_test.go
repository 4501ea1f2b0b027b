package language_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/services/language"
)

// mockLanguageClassifier is a mock implementation of ai.LanguageClassifier.
type mockLanguageClassifier struct {
	mock.Mock
}

func (m *mockLanguageClassifier) DetectLanguage(ctx context.Context, message string) (*models.LanguageDetection, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LanguageDetection), args.Error(1)
}

func newService(classifier *mockLanguageClassifier) *language.Service {
	return language.NewService(classifier, language.Config{}, nil, zerolog.Nop())
}

func TestIsSystemGenerated(t *testing.T) {
	systemMessages := []string{
		"a1b2c3d4-e5f6-7890-abcd-ef1234567890",
		"slot_3_morning",
		"day_2026-09-01",
		"choose_another_day",
		"contact_support",
		"12 PM",
		"1:30 AM",
		"confirm_quote",
		"button_value-1",
	}
	for _, msg := range systemMessages {
		assert.True(t, language.IsSystemGenerated(msg), "expected system: %q", msg)
	}

	naturalMessages := []string{
		"I would like to book an appointment",
		"¿Tienen disponibilidad mañana?",
		"two words",
	}
	for _, msg := range naturalMessages {
		assert.False(t, language.IsSystemGenerated(msg), "expected natural: %q", msg)
	}
}

func TestResolveSystemMessageKeepsExisting(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "slot_2_afternoon", "es", false)

	// Assert: button payloads never touch the classifier or the preference.
	assert.Equal(t, "es", res.Language)
	assert.False(t, res.WasChanged)
	classifier.AssertNotCalled(t, "DetectLanguage", mock.Anything, mock.Anything)
}

func TestResolveAddressCollectionSuspendsDetection(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "123 Main Street, Springfield", "en", true)

	// Assert
	assert.Equal(t, "en", res.Language)
	classifier.AssertNotCalled(t, "DetectLanguage", mock.Anything, mock.Anything)
}

func TestResolveShortMessageKeepsExisting(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	svc := newService(classifier)

	// Act: "ok si" is too short to override an established preference.
	res := svc.Resolve(context.Background(), "ok si", "en", false)

	// Assert
	assert.Equal(t, "en", res.Language)
	assert.False(t, res.WasChanged)
	classifier.AssertNotCalled(t, "DetectLanguage", mock.Anything, mock.Anything)
}

func TestResolveHighConfidenceSwitch(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	classifier.On("DetectLanguage", mock.Anything, mock.Anything).
		Return(&models.LanguageDetection{Code: "es", Confidence: 0.95}, nil)
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "quisiera reservar una cita para mañana", "en", false)

	// Assert
	assert.Equal(t, "es", res.Language)
	assert.True(t, res.WasChanged)
	assert.Equal(t, "en", res.Previous)
}

func TestResolveLowConfidenceKeepsExisting(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	classifier.On("DetectLanguage", mock.Anything, mock.Anything).
		Return(&models.LanguageDetection{Code: "es", Confidence: 0.6}, nil)
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "a longer ambiguous message here", "en", false)

	// Assert
	assert.Equal(t, "en", res.Language)
	assert.False(t, res.WasChanged)
}

func TestResolveUnsupportedLanguageKeepsExisting(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	classifier.On("DetectLanguage", mock.Anything, mock.Anything).
		Return(&models.LanguageDetection{Code: "fr", Confidence: 0.99}, nil)
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "je voudrais prendre rendez-vous demain", "en", false)

	// Assert
	assert.Equal(t, "en", res.Language)
	assert.False(t, res.WasChanged)
}

func TestResolveDetectionErrorKeepsExisting(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	classifier.On("DetectLanguage", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("model down"))
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "a long enough message to detect from", "es", false)

	// Assert
	assert.Equal(t, "es", res.Language)
	assert.False(t, res.WasChanged)
}

func TestResolveFirstTimeDetection(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	classifier.On("DetectLanguage", mock.Anything, mock.Anything).
		Return(&models.LanguageDetection{Code: "es", Confidence: 0.5}, nil)
	svc := newService(classifier)

	// Act: first detection accepts any supported verdict regardless of
	// confidence.
	res := svc.Resolve(context.Background(), "hola, quiero información por favor", "", false)

	// Assert
	assert.Equal(t, "es", res.Language)
	assert.True(t, res.WasChanged)
}

func TestResolveFirstTimeShortMessageUsesDefault(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "hola", "", false)

	// Assert
	assert.Equal(t, language.DefaultLanguage, res.Language)
	assert.True(t, res.WasChanged)
	classifier.AssertNotCalled(t, "DetectLanguage", mock.Anything, mock.Anything)
}

func TestResolveFirstTimeErrorUsesDefault(t *testing.T) {
	// Arrange
	classifier := &mockLanguageClassifier{}
	classifier.On("DetectLanguage", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("timeout"))
	svc := newService(classifier)

	// Act
	res := svc.Resolve(context.Background(), "this is the very first message", "", false)

	// Assert
	assert.Equal(t, language.DefaultLanguage, res.Language)
	assert.True(t, res.WasChanged)
}
