package fetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the export pipelines.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	RowsTotal       *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_requests_total",
			Help: "Total API requests issued, by pipeline.",
		},
		[]string{"pipeline"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	rows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_rows_written_total",
			Help: "Total CSV rows written, by pipeline.",
		},
		[]string{"pipeline"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "export_retries_total",
			Help: "Total retry attempts performed.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_errors_total",
			Help: "Total fetch errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, rows, retries, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		RowsTotal:       rows,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests counter for a pipeline.
func (m *Metrics) IncRequest(pipeline string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(pipeline).Inc()
}

// ObserveDuration records an API request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddRows adds written rows for a pipeline.
func (m *Metrics) AddRows(pipeline string, n int) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(pipeline).Add(float64(n))
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
