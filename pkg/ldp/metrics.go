package ldp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ldp_client_requests_total",
		Help: "Total number of requests sent to the LDP repository",
	}, []string{"method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ldp_client_request_duration_seconds",
		Help:    "Latency of LDP repository requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
