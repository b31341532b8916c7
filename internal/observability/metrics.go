// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the notebook API.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts all HTTP requests by method and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opennotebook_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// AuthDecisions counts terminal authentication decisions by the
	// strategy that made them.
	AuthDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opennotebook_auth_decisions_total",
			Help: "Authentication decisions by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// ProviderRequests counts calls to the identity provider.
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opennotebook_provider_requests_total",
			Help: "Identity provider requests by operation and status",
		},
		[]string{"operation", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		AuthDecisions,
		ProviderRequests,
	)
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records per-request counters. It wraps the handler below the
// auth middleware so rejected requests are counted too.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
