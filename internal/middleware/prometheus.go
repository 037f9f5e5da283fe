package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/product-catalog/internal/metrics"
)

// unmatchedRoute labels requests no route matched, keeping arbitrary URLs out
// of the path label.
const unmatchedRoute = "unmatched"

// Prometheus records request duration and count labelled by chi route pattern.
// Scrapes of /metrics are not recorded.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recordStatus(w)
		next.ServeHTTP(rec, r)

		route := routePattern(r)
		switch route {
		case "/metrics":
			return
		case "":
			route = unmatchedRoute
		}
		metrics.RecordRequest(r.Method, route, rec.status, time.Since(start).Seconds())
	})
}
