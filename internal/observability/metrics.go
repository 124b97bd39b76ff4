package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	cacheLookupsTotal     *prometheus.CounterVec
	evaluationSeconds     *prometheus.HistogramVec
	evaluatedStepsTotal   *prometheus.CounterVec
	snapshotImportsTotal  *prometheus.CounterVec
	snapshotImportedSteps prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the insights API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_requests_total",
			Help: "Total number of insights API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insights_latency_seconds",
			Help:    "Latency distribution for insights API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_errors_total",
			Help: "Total number of error responses returned by insights endpoints.",
		}, []string{"method", "route", "status"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_cache_lookups_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		evaluationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insights_evaluation_seconds",
			Help:    "Time spent evaluating steps per operation.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"operation"})

		evaluatedStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_evaluated_steps_total",
			Help: "Steps evaluated by verdict.",
		}, []string{"verdict"})

		snapshotImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_snapshot_imports_total",
			Help: "Snapshot imports by outcome.",
		}, []string{"status"})

		snapshotImportedSteps = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insights_snapshot_imported_steps_total",
			Help: "Steps written by snapshot imports.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			cacheLookupsTotal,
			evaluationSeconds,
			evaluatedStepsTotal,
			snapshotImportsTotal,
			snapshotImportedSteps,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error response counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// CacheLookups counts dashboard cache hits and misses.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

// EvaluationDuration times engine work per operation.
func EvaluationDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return evaluationSeconds
}

// EvaluatedSteps counts evaluated steps by verdict.
func EvaluatedSteps() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluatedStepsTotal
}

// SnapshotImports counts imports by outcome.
func SnapshotImports() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotImportsTotal
}

// SnapshotImportedSteps counts stored steps.
func SnapshotImportedSteps() prometheus.Counter {
	RegisterMetrics()
	return snapshotImportedSteps
}
