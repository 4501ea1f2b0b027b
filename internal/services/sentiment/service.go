// Package sentiment wraps the sentiment classifier with a Redis cache so
// frustration analysis can re-score history messages without repeated
// model calls.
package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/core/ai"
	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/infrastructure/cache/redis"
	"github.com/skedy/escalation-service/internal/pkg/metrics"
)

// Service is a caching sentiment classifier. It satisfies
// ai.SentimentClassifier itself so callers cannot tell it apart from the
// raw model.
type Service struct {
	classifier ai.SentimentClassifier
	cache      *redis.Client
	ttl        time.Duration
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewService creates a caching sentiment service. The cache may be nil,
// in which case every call goes to the model.
func NewService(classifier ai.SentimentClassifier, cache *redis.Client, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		classifier: classifier,
		cache:      cache,
		ttl:        ttl,
		metrics:    m,
		logger:     logger.With().Str("component", "sentiment").Logger(),
	}
}

// ClassifySentiment returns the cached verdict for the message content if
// one exists, otherwise asks the model and caches the answer.
func (s *Service) ClassifySentiment(ctx context.Context, message string) (*models.Sentiment, error) {
	key := cacheKey(message)

	if s.cache != nil {
		var cached models.Sentiment
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			// A broken cache must not block classification.
			s.logger.Warn().Err(err).Msg("sentiment cache read failed")
		} else if found {
			if s.metrics != nil {
				s.metrics.SentimentCacheHits.Inc()
			}
			return &cached, nil
		}
	}

	if s.metrics != nil {
		s.metrics.SentimentCacheMisses.Inc()
	}

	result, err := s.classifier.ClassifySentiment(ctx, message)
	if err != nil || result == nil {
		return result, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, result, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("sentiment cache write failed")
		}
	}

	return result, nil
}

// cacheKey hashes the message content so arbitrary customer text never
// lands in a Redis key.
func cacheKey(message string) string {
	sum := sha256.Sum256([]byte(message))
	return "sentiment:" + hex.EncodeToString(sum[:16])
}
