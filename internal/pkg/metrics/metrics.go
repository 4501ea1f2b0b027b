// Package metrics exposes Prometheus instrumentation for the escalation
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	EscalationsTriggered  *prometheus.CounterVec
	NotificationsSent     *prometheus.CounterVec
	DeliveryRetries       prometheus.Counter
	ClassifierRequests    *prometheus.CounterVec
	ClassifierDuration    *prometheus.HistogramVec
	SentimentCacheHits    prometheus.Counter
	SentimentCacheMisses  prometheus.Counter
	ProxySessionsActive   prometheus.Gauge
	LanguageSwitches      prometheus.Counter
	EscalationCheckLength prometheus.Histogram
}

// New registers the service metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the service metrics on reg. Tests use this
// to avoid duplicate registration on the default registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EscalationsTriggered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "escalations_triggered_total",
			Help: "Total number of escalations, by trigger reason",
		}, []string{"reason"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notification deliveries, by outcome",
		}, []string{"status"}),
		DeliveryRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "notification_delivery_retries_total",
			Help: "Total number of notification delivery retries",
		}),
		ClassifierRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "classifier_requests_total",
			Help: "Total number of AI classifier calls, by kind and outcome",
		}, []string{"kind", "status"}),
		ClassifierDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classifier_request_duration_seconds",
			Help:    "Time taken for AI classifier calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		SentimentCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_cache_hits_total",
			Help: "Total number of sentiment classifications served from cache",
		}),
		SentimentCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_cache_misses_total",
			Help: "Total number of sentiment classifications requiring a model call",
		}),
		ProxySessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "proxy_sessions_active",
			Help: "Current number of conversations under operator control",
		}),
		LanguageSwitches: factory.NewCounter(prometheus.CounterOpts{
			Name: "language_switches_total",
			Help: "Total number of conversation language switches",
		}),
		EscalationCheckLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "escalation_history_scan_length",
			Help:    "Number of history messages scanned per frustration analysis",
			Buckets: []float64{1, 2, 5, 10, 15},
		}),
	}
}
