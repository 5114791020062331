// Package metrics exposes Prometheus instrumentation for the scoring engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	evaluations   *prometheus.CounterVec
	cacheHits     prometheus.Counter
	sourceQueries *prometheus.CounterVec
	sourceLatency *prometheus.HistogramVec
	scores        prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainpass_score_evaluations_total",
			Help: "Score evaluations by outcome (complete, partial, failed).",
		}, []string{"outcome"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "chainpass_score_cache_hits_total",
			Help: "Evaluations served from the score cache.",
		}),
		sourceQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainpass_score_source_queries_total",
			Help: "Activity source queries by source and result.",
		}, []string{"source", "result"}),
		sourceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chainpass_score_source_latency_seconds",
			Help:    "Activity source query latency by source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		scores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainpass_score_values",
			Help:    "Distribution of computed scores.",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

func (m *Metrics) RecordEvaluation(outcome string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) RecordSourceQuery(source, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sourceQueries.WithLabelValues(source, result).Inc()
	m.sourceLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordScore(score int) {
	if m == nil {
		return
	}
	m.scores.Observe(float64(score))
}
