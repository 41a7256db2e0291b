package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters exported by the personalization engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	recommendations *prometheus.CounterVec
	catalogCache    *prometheus.CounterVec
	intents         *prometheus.CounterVec
	grounding       *prometheus.CounterVec
	predictions     *prometheus.CounterVec
}

// NewMetrics creates and registers the engine metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora",
			Subsystem: "recommender",
			Name:      "results_total",
			Help:      "Recommendation lists served, by producing strategy.",
		}, []string{"source"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora",
			Subsystem: "catalog",
			Name:      "cache_events_total",
			Help:      "Catalog snapshot cache hits, misses and invalidations.",
		}, []string{"event"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora",
			Subsystem: "assistant",
			Name:      "intents_total",
			Help:      "Classified intents of assistant queries.",
		}, []string{"intent"}),
		grounding: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora",
			Subsystem: "assistant",
			Name:      "grounding_total",
			Help:      "Factual grounding outcomes of assembled contexts.",
		}, []string{"kind"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora",
			Subsystem: "predictor",
			Name:      "predictions_total",
			Help:      "Preferred-category predictions, by predicted label.",
		}, []string{"label"}),
	}
	if reg != nil {
		reg.MustRegister(m.recommendations, m.catalogCache, m.intents, m.grounding, m.predictions)
	}
	return m
}

// RecommendationServed counts a recommendation list by source
func (m *Metrics) RecommendationServed(source string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(source).Inc()
}

// CatalogCacheEvent counts a catalog cache hit, miss or invalidation
func (m *Metrics) CatalogCacheEvent(event string) {
	if m == nil {
		return
	}
	m.catalogCache.WithLabelValues(event).Inc()
}

// IntentClassified counts a classified intent
func (m *Metrics) IntentClassified(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

// Grounded counts a grounding outcome ("order", "product" or "none")
func (m *Metrics) Grounded(kind string) {
	if m == nil {
		return
	}
	m.grounding.WithLabelValues(kind).Inc()
}

// CategoryPredicted counts a prediction by label
func (m *Metrics) CategoryPredicted(label string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(label).Inc()
}
