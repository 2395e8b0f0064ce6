// Package metrics contains Prometheus metrics for the bot
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the download bot
type Metrics struct {
	OperationsStarted *prometheus.CounterVec
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	InFlight          prometheus.Gauge
	CleanupErrors     prometheus.Counter
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton registered on the default registry
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewMetrics creates and registers the metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yt_downloader_operations_started_total",
				Help: "Total number of operations started",
			},
			[]string{"kind"},
		),
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yt_downloader_operations_total",
				Help: "Total number of finished operations by outcome",
			},
			[]string{"kind", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yt_downloader_operation_duration_seconds",
				Help:    "Duration of operations from request to terminal notification",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "yt_downloader_operations_in_flight",
			Help: "Number of operations currently running",
		}),
		CleanupErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "yt_downloader_cleanup_errors_total",
			Help: "Total number of temp files that could not be removed",
		}),
	}
}

// RecordOperationStarted records a new operation
func (m *Metrics) RecordOperationStarted(kind string) {
	m.OperationsStarted.WithLabelValues(kind).Inc()
	m.InFlight.Inc()
}

// RecordOperationFinished records the terminal outcome of an operation
func (m *Metrics) RecordOperationFinished(kind, outcome string, seconds float64) {
	m.OperationsTotal.WithLabelValues(kind, outcome).Inc()
	m.OperationDuration.WithLabelValues(kind).Observe(seconds)
	m.InFlight.Dec()
}

// RecordCleanupError records a failed temp file removal
func (m *Metrics) RecordCleanupError() {
	m.CleanupErrors.Inc()
}
