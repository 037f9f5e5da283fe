package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const internalErrorPage = `<!DOCTYPE html>
<html><head><title>Error</title></head>
<body><h1>Internal server error</h1><p><a href="/products/read">Back to products</a></p></body></html>
`

// Recoverer turns a handler panic into a logged stack and a plain 500 page.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.ErrorContext(r.Context(), "panic recovered",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()))

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(internalErrorPage))
		}()
		next.ServeHTTP(w, r)
	})
}
