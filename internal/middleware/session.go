package middleware

import (
	"context"
	"net/http"

	"github.com/crucial707/product-catalog/internal/metrics"
	"github.com/crucial707/product-catalog/internal/session"
)

// SessionCookie carries "Bearer <token>" for browser clients.
const SessionCookie = "access_token"

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/login_form"

// SessionResolver turns a raw credential into a session.
type SessionResolver interface {
	ResolveOutcome(ctx context.Context, credential string) (session.Session, session.Outcome)
}

// Credential returns the raw session credential of r: the access_token cookie
// if present, otherwise the Authorization header.
func Credential(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("Authorization")
}

// Session resolves the request's credential and stores the result in the
// request context. It never rejects a request; anonymous is a valid session.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, outcome := resolver.ResolveOutcome(r.Context(), Credential(r))
			metrics.IncSessionResolution(string(outcome))
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}

// RequireIdentity redirects anonymous sessions to the login form with 303.
// Use after Session.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()).IsAnonymous() {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
