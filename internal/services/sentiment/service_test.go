package sentiment_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skedy/escalation-service/internal/domain/models"
	rediscache "github.com/skedy/escalation-service/internal/infrastructure/cache/redis"
	"github.com/skedy/escalation-service/internal/services/sentiment"
)

// mockClassifier is a mock implementation of ai.SentimentClassifier.
type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) ClassifySentiment(ctx context.Context, message string) (*models.Sentiment, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sentiment), args.Error(1)
}

func newCacheClient(t *testing.T) *rediscache.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := rediscache.NewClient(rediscache.Config{
		Host:       srv.Host(),
		Port:       srv.Port(),
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClassifySentimentCachesVerdict(t *testing.T) {
	// Arrange
	classifier := &mockClassifier{}
	classifier.On("ClassifySentiment", mock.Anything, "this is broken").
		Return(&models.Sentiment{Score: 8, Category: models.SentimentFrustrated}, nil).Once()

	svc := sentiment.NewService(classifier, newCacheClient(t), time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	// Act: two calls, one model round trip.
	first, err := svc.ClassifySentiment(ctx, "this is broken")
	require.NoError(t, err)
	second, err := svc.ClassifySentiment(ctx, "this is broken")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first, second)
	assert.Equal(t, models.SentimentFrustrated, second.Category)
	classifier.AssertNumberOfCalls(t, "ClassifySentiment", 1)
}

func TestClassifySentimentDistinctMessagesDistinctEntries(t *testing.T) {
	// Arrange
	classifier := &mockClassifier{}
	classifier.On("ClassifySentiment", mock.Anything, "message one").
		Return(&models.Sentiment{Score: 2, Category: models.SentimentPositive}, nil).Once()
	classifier.On("ClassifySentiment", mock.Anything, "message two").
		Return(&models.Sentiment{Score: 9, Category: models.SentimentFrustrated}, nil).Once()

	svc := sentiment.NewService(classifier, newCacheClient(t), time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	// Act
	one, err := svc.ClassifySentiment(ctx, "message one")
	require.NoError(t, err)
	two, err := svc.ClassifySentiment(ctx, "message two")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, models.SentimentPositive, one.Category)
	assert.Equal(t, models.SentimentFrustrated, two.Category)
}

func TestClassifySentimentNilCache(t *testing.T) {
	// Arrange: with no cache every call hits the model.
	classifier := &mockClassifier{}
	classifier.On("ClassifySentiment", mock.Anything, mock.Anything).
		Return(&models.Sentiment{Score: 5, Category: models.SentimentNeutral}, nil).Twice()

	svc := sentiment.NewService(classifier, nil, time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	// Act
	_, err := svc.ClassifySentiment(ctx, "hello")
	require.NoError(t, err)
	_, err = svc.ClassifySentiment(ctx, "hello")
	require.NoError(t, err)

	// Assert
	classifier.AssertNumberOfCalls(t, "ClassifySentiment", 2)
}

func TestClassifySentimentErrorsAreNotCached(t *testing.T) {
	// Arrange
	classifier := &mockClassifier{}
	classifier.On("ClassifySentiment", mock.Anything, "flaky").
		Return(nil, fmt.Errorf("model down")).Once()
	classifier.On("ClassifySentiment", mock.Anything, "flaky").
		Return(&models.Sentiment{Score: 5, Category: models.SentimentNeutral}, nil).Once()

	svc := sentiment.NewService(classifier, newCacheClient(t), time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	// Act
	_, err := svc.ClassifySentiment(ctx, "flaky")
	assert.Error(t, err)

	verdict, err := svc.ClassifySentiment(ctx, "flaky")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, models.SentimentNeutral, verdict.Category)
}
