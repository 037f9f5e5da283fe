package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health always answers ok while the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// Ready answers 503 when the store does not respond within two seconds.
// A nil Pinger is always ready.
func Ready(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				JSONError(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	}
}
