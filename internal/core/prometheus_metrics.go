package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation metrics through a Prometheus
// registry: a duration histogram and a result counter, both labelled by
// operation and status.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with the given registerer. Pass prometheus.DefaultRegisterer
// for the process-wide registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cubenote",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubenote",
		Subsystem: "service",
		Name:      "operation_results_total",
		Help:      "Count of ledger service operation outcomes.",
	}, []string{"operation", "status"})

	if reg != nil {
		for _, c := range []prometheus.Collector{durations, results} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return &PrometheusMetricsRecorder{durations: durations, results: results}, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
