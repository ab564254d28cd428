// Package metrics exposes prometheus metrics for tree analyses
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the analyzer
type Registry struct {
	// Evaluation Metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	NodesEvaluated     *prometheus.HistogramVec

	// Orchestration Metrics
	StrategiesProduced *prometheus.HistogramVec
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	DefensePairs       prometheus.Gauge

	// Report Metrics
	ReportsWritten *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initEvaluationMetrics()
	r.initAnalysisMetrics()
	r.ReportsWritten = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adtree_reports_written_total",
			Help: "Reports handed to each sink",
		},
		[]string{"sink", "status"},
	)
	return r
}

func (r *Registry) initEvaluationMetrics() {
	r.EvaluationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adtree_evaluations_total",
			Help: "Total number of bottom-up evaluations",
		},
		[]string{"domain", "status"},
	)

	r.EvaluationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adtree_evaluation_duration_seconds",
			Help:    "Bottom-up evaluation duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
		[]string{"domain"},
	)

	r.NodesEvaluated = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adtree_nodes_evaluated",
			Help:    "Distinct nodes folded per evaluation",
			Buckets: []float64{10, 100, 1000, 10000},
		},
		[]string{"domain"},
	)
}

func (r *Registry) initAnalysisMetrics() {
	r.StrategiesProduced = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adtree_strategies_produced",
			Help:    "Strategies produced by each phase of the defense-semantics derivation",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
		[]string{"phase"},
	)

	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "adtree_analyses_total",
			Help: "Total number of tree analyses",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adtree_analysis_duration_seconds",
			Help:    "Full analysis duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1.0, 10.0, 60.0},
		},
	)

	r.DefensePairs = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "adtree_defense_pairs",
			Help: "Size of the most recently computed defense semantics",
		},
	)
}

// RecordEvaluation records one bottom-up evaluation
func (r *Registry) RecordEvaluation(domain string, err error, duration time.Duration, nodes int) {
	r.EvaluationsTotal.WithLabelValues(domain, status(err)).Inc()
	if err != nil {
		return
	}
	r.EvaluationDuration.WithLabelValues(domain).Observe(duration.Seconds())
	r.NodesEvaluated.WithLabelValues(domain).Observe(float64(nodes))
}

// RecordPhase records how many strategies a phase produced
func (r *Registry) RecordPhase(phase string, strategies int) {
	r.StrategiesProduced.WithLabelValues(phase).Observe(float64(strategies))
}

// RecordAnalysis records a completed (or failed) analysis
func (r *Registry) RecordAnalysis(err error, duration time.Duration, pairs int) {
	r.AnalysesTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	r.AnalysisDuration.Observe(duration.Seconds())
	r.DefensePairs.Set(float64(pairs))
}

// RecordReport records a report write to the named sink
func (r *Registry) RecordReport(sink string, err error) {
	r.ReportsWritten.WithLabelValues(sink, status(err)).Inc()
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
