// Package metrics provides Prometheus metrics for the fraud dashboard.
// It defines the evaluation, session and model metrics exposed via the
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Evaluation metrics
	EvaluationsTotal  *prometheus.CounterVec // Evaluations by verdict
	EvaluationErrors  *prometheus.CounterVec // Rejected evaluations by error kind
	EvaluationLatency prometheus.Histogram   // End-to-end evaluation latency in seconds
	ProbabilityScores prometheus.Histogram   // Distribution of fraud probabilities

	// Model metrics
	ModelInfo     *prometheus.GaugeVec // Constant 1, labelled with the loaded bundle
	ModelFeatures prometheus.Gauge     // Number of feature columns in the bundle

	// Dashboard metrics
	ActiveSessions prometheus.Gauge       // Open interactive websocket sessions
	APIRequests    *prometheus.CounterVec // API requests by route
	ErrorsTotal    prometheus.Counter     // Total number of errors encountered
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		EvaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_evaluations_total",
			Help: "Total number of transaction evaluations by verdict",
		}, []string{"verdict"}),
		EvaluationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_evaluation_errors_total",
			Help: "Total number of rejected evaluations by error kind",
		}, []string{"kind"}),
		EvaluationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_evaluation_latency_seconds",
			Help:    "Evaluation latency in seconds (end-to-end)",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
		ProbabilityScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_probability",
			Help:    "Distribution of predicted fraud probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ModelInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fraud_model_info",
			Help: "Loaded model bundle (constant 1)",
		}, []string{"kind", "source"}),
		ModelFeatures: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fraud_model_features",
			Help: "Number of feature columns expected by the model",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_active_sessions",
			Help: "Number of open interactive dashboard sessions",
		}),
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_api_requests_total",
			Help: "Total number of dashboard API requests by route",
		}, []string{"route"}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
