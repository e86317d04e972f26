// Package observability defines the Prometheus metric set for the viewer core.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	jobSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_submissions_total",
			Help: "Job creation requests by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	jobPollAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_poll_attempts_total",
			Help: "Individual job status fetches by kind.",
		},
		[]string{"kind"},
	)

	jobPollOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_poll_outcomes_total",
			Help: "Terminal poll outcomes by kind.",
		},
		[]string{"kind", "outcome"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream API calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	detailsCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "details_cache_results_total",
			Help: "Details cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveJobSubmission(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	jobSubmissionsTotal.WithLabelValues(kind, outcome).Inc()
}

func IncPollAttempt(kind string) {
	jobPollAttemptsTotal.WithLabelValues(kind).Inc()
}

func IncPollOutcome(kind, outcome string) {
	jobPollOutcomesTotal.WithLabelValues(kind, outcome).Inc()
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func IncDetailsCacheHit() {
	detailsCacheResults.WithLabelValues("hit").Inc()
}

func IncDetailsCacheMiss() {
	detailsCacheResults.WithLabelValues("miss").Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
