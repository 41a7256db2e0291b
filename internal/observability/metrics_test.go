package observability

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecommendationServed("rules")
	m.RecommendationServed("rules")
	m.RecommendationServed("popular")
	m.CatalogCacheEvent("miss")
	m.IntentClassified("price")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recommendations.WithLabelValues("rules")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recommendations.WithLabelValues("popular")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.intents.WithLabelValues("price")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecommendationServed("rules")
		m.CatalogCacheEvent("hit")
		m.IntentClassified("general")
		m.Grounded("none")
		m.CategoryPredicted("Books")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf, ServiceName: "aurora-test"})

	recommenderLog := Component(log, "recommender")
	recommenderLog.Info().Msg("hello")
	log.Debug().Msg("filtered")

	out := buf.String()
	assert.Contains(t, out, `"service":"aurora-test"`)
	assert.Contains(t, out, `"component":"recommender"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.NotContains(t, out, "filtered")
}
