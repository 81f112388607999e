// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	StageDuration      *prometheus.HistogramVec
	PublishesTotal     prometheus.Counter

	// Ledger metrics
	RPCCallLatency     *prometheus.HistogramVec
	HistoryPagesPerRun prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "nestquest"
	}

	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upgrade",
			Name:      "evaluations_total",
			Help:      "Total number of upgrade evaluations by outcome",
		}, []string{"outcome"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upgrade",
			Name:      "evaluation_duration_seconds",
			Help:      "End-to-end duration of an upgrade evaluation",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upgrade",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each eligibility stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		PublishesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upgrade",
			Name:      "publishes_total",
			Help:      "Total number of upgraded documents written to storage",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Solana RPC call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		HistoryPagesPerRun: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "history_pages",
			Help:      "Signature history pages fetched per stake-duration lookup",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEvaluation records the outcome and duration of one evaluation.
func RecordEvaluation(outcome string, seconds float64) {
	DefaultMetrics.EvaluationsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.EvaluationDuration.Observe(seconds)
}

// RecordStage records the duration of a pipeline stage.
func RecordStage(stage string, seconds float64) {
	DefaultMetrics.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordPublish increments the publish counter.
func RecordPublish() {
	DefaultMetrics.PublishesTotal.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordHistoryPages records how many history pages one lookup needed.
func RecordHistoryPages(pages int) {
	DefaultMetrics.HistoryPagesPerRun.Observe(float64(pages))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
