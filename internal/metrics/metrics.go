package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	AuditDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_audit_decisions_total",
			Help: "KYC audit attempts by decision and outcome code.",
		},
		[]string{"decision", "outcome"},
	)
	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ucard_gateway_request_duration_seconds",
			Help:    "Latency of calls to the card issuer API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "outcome"},
	)
	PendingIntents = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kyc_audit_intents",
			Help: "Unfinished audit intents seen by the last reconciliation run.",
		},
		[]string{"state"},
	)
)

// Register регистрирует метрики сервиса и стандартные коллекторы процесса.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		RequestCount,
		RequestDuration,
		AuditDecisions,
		GatewayDuration,
		PendingIntents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
