package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes caps form posts (64 KiB).
const DefaultMaxBodyBytes = 64 << 10

// allowForms answers 415 to non-empty bodies that are not HTML form submissions.
var allowForms = chimw.AllowContentType("application/x-www-form-urlencoded", "multipart/form-data")

// FormBody accepts only form bodies and caps them at maxBytes.
func FormBody(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		capped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
		return allowForms(capped)
	}
}
