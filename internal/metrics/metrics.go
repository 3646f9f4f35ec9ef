// Package metrics provides centralized Prometheus metrics registry for the scoring service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeFailure = "failure"
)

// Counter metrics
var (
	CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "points_calculations_total",
		Help:      "Total number of points calculation steps by step and outcome",
	}, []string{"step", "outcome"})
	PointRowsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "point_rows_written_total",
		Help:      "Total number of points rows upserted by table",
	}, []string{"table"})
	PredictionsScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "predictions_scored_total",
		Help:      "Total number of predictions scored",
	})
	PredictionsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "predictions_submitted_total",
		Help:      "Total number of prediction submissions by outcome",
	}, []string{"outcome"})
	StandingsCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "standings_cache_requests_total",
		Help:      "Standings cache lookups by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	ScoredParticipants = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pitwall",
		Name:      "scored_participants",
		Help:      "Participants whose totals were recomputed in the last prediction run",
	})
)

// Histogram metrics
var (
	CalculationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pitwall",
		Name:      "points_calculation_duration_seconds",
		Help:      "Duration of points calculation steps in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CalculationsTotal)
		registry.MustRegister(PointRowsWrittenTotal)
		registry.MustRegister(PredictionsScoredTotal)
		registry.MustRegister(PredictionsSubmittedTotal)
		registry.MustRegister(StandingsCacheRequestsTotal)

		registry.MustRegister(ScoredParticipants)

		registry.MustRegister(CalculationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCalculation records a finished calculator step.
func RecordCalculation(step, outcome string, durationSeconds float64) {
	CalculationsTotal.WithLabelValues(step, outcome).Inc()
	CalculationDuration.WithLabelValues(step).Observe(durationSeconds)
}

// RecordRowsWritten records upserted rows for a table.
func RecordRowsWritten(table string, rows int) {
	PointRowsWrittenTotal.WithLabelValues(table).Add(float64(rows))
}

// RecordPredictionsScored records scored predictions.
func RecordPredictionsScored(count int) {
	PredictionsScoredTotal.Add(float64(count))
}

// RecordPredictionSubmission records a prediction submission outcome.
func RecordPredictionSubmission(outcome string) {
	PredictionsSubmittedTotal.WithLabelValues(outcome).Inc()
}

// RecordStandingsCache records a cache hit or miss.
func RecordStandingsCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	StandingsCacheRequestsTotal.WithLabelValues(result).Inc()
}

// UpdateScoredParticipants updates the scored participants gauge.
func UpdateScoredParticipants(count int) {
	ScoredParticipants.Set(float64(count))
}
