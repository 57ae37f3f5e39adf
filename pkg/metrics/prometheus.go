package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheLookups  *prometheus.CounterVec
	upstreamCalls *prometheus.CounterVec
	auditRuns     prometheus.Counter
	auditScored   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_lookups_total",
				Help: "Cache lookups by key family and result",
			},
			[]string{"family", "result"},
		),
		upstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_upstream_requests_total",
				Help: "Upstream provider requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		auditRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stockpulse_audit_runs_total",
				Help: "Total audit scheduler runs",
			},
		),
		auditScored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_audit_records_total",
				Help: "Prediction records handled by the audit job, by outcome",
			},
			[]string{"outcome"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheLookup records a cache hit or miss for a key family.
func (r *Recorder) RecordCacheLookup(family, result string) {
	r.cacheLookups.WithLabelValues(family, result).Inc()
}

// RecordUpstreamCall records an upstream provider call outcome.
func (r *Recorder) RecordUpstreamCall(provider, outcome string) {
	r.upstreamCalls.WithLabelValues(provider, outcome).Inc()
}

// RecordAuditRun records one audit scheduler pass.
func (r *Recorder) RecordAuditRun() {
	r.auditRuns.Inc()
}

// RecordAuditRecord records a prediction record outcome (scored, skipped, failed).
func (r *Recorder) RecordAuditRecord(outcome string) {
	r.auditScored.WithLabelValues(outcome).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
