package bungie_metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	BUNGIE_ENDPOINT_DIMENSION = "endpoint"
	BUNGIE_OUTCOME_DIMENSION  = "outcome"
)

var RequestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "threepole_bungie_requests_total",
		Help: "Total number of Bungie API requests",
	},
	[]string{BUNGIE_ENDPOINT_DIMENSION, BUNGIE_OUTCOME_DIMENSION}, // outcome: "success", "bungie_error", "missing", "deserialize", "network"
)

var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "threepole_bungie_request_duration_ms",
		Help:    "Time taken by Bungie API requests in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
	[]string{BUNGIE_ENDPOINT_DIMENSION},
)

var RateLimiterWaitTime = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "threepole_bungie_rate_limiter_wait_ms",
		Help:    "Time spent waiting on the client rate limiter in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	},
)

var RequestsPerMinute = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "threepole_bungie_requests_per_minute",
		Help: "Bungie API requests sent during the last minute",
	},
)

// Register registers all Bungie client metrics with Prometheus
func Register() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RateLimiterWaitTime)
	prometheus.MustRegister(RequestsPerMinute)
}
