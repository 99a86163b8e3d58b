package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Gateway
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sagepay_gateway_requests_total",
			Help: "Gateway calls by endpoint and HTTP status (0 when no response arrived)",
		},
		[]string{"endpoint", "status"},
	)
	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sagepay_gateway_request_duration_seconds",
			Help:    "Latency of gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Lifecycle
	TransactionSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sagepay_transaction_steps_total",
			Help: "Recorded lifecycle steps by step name and gateway outcome",
		},
		[]string{"step", "outcome"},
	)
	InvalidStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sagepay_invalid_transaction_status_total",
			Help: "Lifecycle calls rejected by a precondition",
		},
		[]string{"operation"},
	)

	// Event worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics from the default registry.
var Handler = promhttp.Handler

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(HTTPLatency)
		prometheus.MustRegister(GatewayRequests)
		prometheus.MustRegister(GatewayLatency)
		prometheus.MustRegister(TransactionSteps)
		prometheus.MustRegister(InvalidStatusTotal)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
