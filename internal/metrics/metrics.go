// Package metrics provides Prometheus instrumentation for the trade
// authorization pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts routed chat commands, partitioned by the
	// classifier's dispatch decision.
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polybot_messages_total",
		Help: "Total chat commands routed",
	}, []string{"kind"})

	// ValidationFailures counts rejected intents by validation code.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polybot_validation_failures_total",
		Help: "Intents rejected during validation",
	}, []string{"code"})

	// ReservationsRejected counts spend reservations refused by the ledger.
	ReservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polybot_spend_reservations_rejected_total",
		Help: "Spend reservations refused at the ledger",
	})

	// ConfirmationsTotal counts confirmation outcomes.
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polybot_confirmations_total",
		Help: "Confirmation outcomes",
	}, []string{"outcome"}) // confirmed, cancelled, expired

	// PendingConfirmations tracks trades currently awaiting approval.
	PendingConfirmations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polybot_pending_confirmations",
		Help: "Trades currently awaiting confirmation",
	})

	// ExecutionsTotal counts gateway executions by result code.
	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polybot_executions_total",
		Help: "Gateway execution attempts",
	}, []string{"result"}) // ok, or a gateway error code

	// ExecutionLatency tracks gateway call latency.
	ExecutionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polybot_execution_latency_seconds",
		Help:    "Gateway execution latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polybot_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polybot_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the raw path for the label; the API surface is small enough
		// that cardinality stays bounded.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
