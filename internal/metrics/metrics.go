package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SessionResolutions counts credential resolutions by outcome
	// (authenticated, missing, invalid, unknown_user, lookup_error).
	SessionResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_session_resolutions_total",
			Help: "Session credential resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// CatalogOperations counts account and product operations by name and result.
	CatalogOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Catalog operations by operation and result",
		},
		[]string{"operation", "result"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, SessionResolutions, CatalogOperations)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /products/edit/123 -> /products/edit/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncSessionResolution counts one resolved credential.
func IncSessionResolution(outcome string) {
	SessionResolutions.WithLabelValues(outcome).Inc()
}

// IncOperation counts one catalog operation (signup, login, create_product, update_product)
// with its result (ok, unauthorized, forbidden, not_found, conflict, invalid, error).
func IncOperation(operation, result string) {
	CatalogOperations.WithLabelValues(operation, result).Inc()
}
