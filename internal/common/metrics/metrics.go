// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provisioner_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ProvisioningOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_provisioning_total",
			Help: "Provisioning attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProvisioningDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provisioner_provisioning_duration_seconds",
			Help:    "Duration of provisioning runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_provider_calls_total",
			Help: "Outbound provider calls by provider and result",
		},
		[]string{"provider", "result"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_rate_limit_rejections_total",
			Help: "Requests rejected by an inbound rate limiter",
		},
		[]string{"limiter"},
	)

	SeedFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_seed_failures_total",
			Help: "Best-effort sample seeding failures",
		},
		[]string{"provider"},
	)

	SecurityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_security_rejections_total",
			Help: "Requests rejected by security screening",
		},
		[]string{"source"},
	)

	InFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "provisioner_http_requests_in_flight",
			Help: "Number of requests currently being served",
		},
	)
)
