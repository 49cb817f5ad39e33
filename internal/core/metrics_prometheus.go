package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports service operation metrics through a
// Prometheus registry. Each observation feeds a latency histogram and an
// outcome counter labelled by operation and status.
type PrometheusMetricsRecorder struct {
	duration *prometheus.HistogramVec
	results  *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder builds a recorder and registers its collectors
// with the supplied registerer. Passing nil uses the default registerer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "labregistry",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Latency of registry service operations in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation", "status"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labregistry",
		Subsystem: "service",
		Name:      "operations_total",
		Help:      "Total registry service operations by outcome",
	}, []string{"operation", "status"})

	if err := reg.Register(duration); err != nil {
		return nil, err
	}
	if err := reg.Register(results); err != nil {
		return nil, err
	}
	return &PrometheusMetricsRecorder{duration: duration, results: results}, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
