package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crucial707/product-catalog/internal/metrics"
	"github.com/crucial707/product-catalog/internal/session"
)

type stubResolver struct {
	got  string
	sess session.Session
}

func (s *stubResolver) ResolveOutcome(ctx context.Context, credential string) (session.Session, session.Outcome) {
	s.got = credential
	if s.sess.IsAnonymous() {
		return s.sess, session.OutcomeMissing
	}
	return s.sess, session.OutcomeAuthenticated
}

func TestCredential_CookieBeforeHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	if got := Credential(r); got != "Bearer header-token" {
		t.Errorf("expected header credential, got %q", got)
	}

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "Bearer cookie-token"})
	if got := Credential(r); got != "Bearer cookie-token" {
		t.Errorf("expected cookie credential, got %q", got)
	}
}

func TestSession_StoresResolvedSession(t *testing.T) {
	res := &stubResolver{sess: session.Authenticated(session.Identity{UserID: 4, Username: "dora"})}

	var seen session.Session
	h := Session(res)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/products/read", nil)
	r.Header.Set("Authorization", "Bearer abc")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if res.got != "Bearer abc" {
		t.Errorf("resolver got %q", res.got)
	}
	id, ok := seen.Identity()
	if !ok || id.UserID != 4 {
		t.Errorf("unexpected session %+v", seen)
	}
}

func TestRequireIdentity(t *testing.T) {
	called := false
	h := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/create", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Errorf("expected 303 to %s, got %d %q", LoginPath, rec.Code, rec.Header().Get("Location"))
	}
	if called {
		t.Error("handler should not run for anonymous session")
	}

	r := httptest.NewRequest(http.MethodGet, "/products/create", nil)
	ctx := session.NewContext(r.Context(), session.Authenticated(session.Identity{UserID: 1, Username: "a"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r.WithContext(ctx))
	if !called || rec.Code != http.StatusOK {
		t.Errorf("expected handler to run, code %d", rec.Code)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "10.0.0.1:" + strconv.Itoa(1234+i)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes %v", codes)
	}

	// A different client has its own bucket.
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for new client, got %d", rec.Code)
	}
}

func TestAuthRateLimiter_RetryAfter(t *testing.T) {
	l := AuthRateLimiter(3)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "20" {
		t.Errorf("got %d Retry-After %q", rec.Code, rec.Header().Get("Retry-After"))
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodOptions, "/products/read", nil)
	r.Header.Set("Origin", "https://app.example")
	r.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Errorf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, HEAD" {
		t.Errorf("allowed methods = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("credentials must not be allowed")
	}

	r = httptest.NewRequest(http.MethodGet, "/products/read", nil)
	r.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unexpected CORS header for unknown origin")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, k := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Strict-Transport-Security"} {
		if rec.Header().Get(k) == "" {
			t.Errorf("missing header %s", k)
		}
	}
}

func TestFormBody(t *testing.T) {
	h := FormBody(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
		}
	}))

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"a"}`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("JSON post: got %d, want 415", rec.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Errorf("small form: got %d, want 200", rec.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=abcdefghijkl"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized form: got %d, want 413", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/read", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET: got %d, want 200", rec.Code)
	}
}

func TestPrometheus_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestLog)
	r.Use(Prometheus)
	r.Get("/products/edit/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	for _, path := range []string{"/products/edit/7", "/products/edit/8", "/nowhere/42"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/products/edit/{id}", "403")); got != 2 {
		t.Errorf("route counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", unmatchedRoute, "404")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}
