package serve

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/product-catalog/internal/app"
	"github.com/crucial707/product-catalog/internal/auth"
	"github.com/crucial707/product-catalog/internal/config"
	"github.com/crucial707/product-catalog/internal/memstore"
	"github.com/crucial707/product-catalog/internal/repo"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.JWTSecret = "test-secret-for-integration"
	cfg.BcryptCost = 4
	cfg.AuthRateLimit = 600
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func newSQLServer(t *testing.T) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return newServer(t, repo.NewStore(db), db), mock
}

func newServer(t *testing.T, store *repo.Store, db *sql.DB) *httptest.Server {
	t.Helper()
	a := app.New(testConfig(), quietLogger(), store, db)
	srv := httptest.NewServer(NewRouter(a))
	t.Cleanup(srv.Close)
	return srv
}

func newMemoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	a := app.New(testConfig(), quietLogger(), memstore.New(), nil)
	srv := httptest.NewServer(NewRouter(a))
	t.Cleanup(srv.Close)
	return srv
}

// TestAPI_LoginThenReadProducts is an integration test: it builds the full router with a
// sqlmock-backed store, logs in through the form, then lists products with the session cookie.
func TestAPI_LoginThenReadProducts(t *testing.T) {
	srv, mock := newSQLServer(t)

	hash, err := auth.Hasher{Cost: 4}.HashPassword("testpass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "hashed_password"}).AddRow(1, "integration", hash)
	}

	// POST /login
	mock.ExpectQuery(`SELECT id, username, hashed_password`).
		WithArgs("integration").
		WillReturnRows(userRow())
	// GET /products/read: session lookup, then the listing
	mock.ExpectQuery(`SELECT id, username, hashed_password`).
		WithArgs("integration").
		WillReturnRows(userRow())
	mock.ExpectQuery(`FROM products ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "area", "regions", "ingredients", "date_added", "user_id"}).
			AddRow(1, "product1", "desc1", "Area1", "Region1", "Salt", time.Now(), 1))

	client := newClient(t)
	resp, err := client.PostForm(srv.URL+"/login", url.Values{"username": {"integration"}, "password": {"testpass"}})
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/products/read" {
		t.Fatalf("login: got %d at %s", resp.StatusCode, resp.Request.URL.Path)
	}
	if !strings.Contains(string(body), "product1") || !strings.Contains(string(body), "Signed in as integration") {
		t.Errorf("unexpected listing:\n%s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	srv, _ := newSQLServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	srv, mock := newSQLServer(t)
	mock.ExpectPing()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_Ready_DBDown(t *testing.T) {
	srv, mock := newSQLServer(t)
	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET /ready status: got %d, want 503", resp.StatusCode)
	}
}

func TestAPI_Metrics(t *testing.T) {
	srv := newMemoryServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "catalog_session_resolutions_total") {
		t.Errorf("GET /metrics: %d", resp.StatusCode)
	}
}

func TestAPI_ProtectedPagesRedirectAnonymous(t *testing.T) {
	srv := newMemoryServer(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	for _, path := range []string{"/products/create", "/products/edit/1"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login_form" {
			t.Errorf("GET %s: got %d %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

// TestAPI_OwnershipFlow walks two users through signup, create and edit on the memory store.
func TestAPI_OwnershipFlow(t *testing.T) {
	srv := newMemoryServer(t)
	alice, bob := newClient(t), newClient(t)

	signup := func(c *http.Client, name string) {
		t.Helper()
		resp, err := c.PostForm(srv.URL+"/login_form", url.Values{"username": {name}, "password": {"pw"}})
		if err != nil {
			t.Fatalf("signup %s: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("signup %s: got %d", name, resp.StatusCode)
		}
	}
	signup(alice, "alice")
	signup(bob, "bob")

	resp, err := alice.PostForm(srv.URL+"/products/create", url.Values{
		"name": {"Soup"}, "description": {"Hot"}, "area": {"North"}, "regions": {"R1"}, "ingredients": {"Water"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Soup") {
		t.Fatalf("created product not listed:\n%s", body)
	}

	edit := url.Values{
		"name": {"Cold Soup"}, "description": {"Cold"}, "area": {"North"}, "regions": {"R1"}, "ingredients": {"Water"},
		"date_added": {"2024-01-02T03:04:05"}, "user_id": {"1"},
	}
	resp, err = bob.PostForm(srv.URL+"/products/edit/1", edit)
	if err != nil {
		t.Fatalf("bob edit: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner edit: got %d, want 403", resp.StatusCode)
	}

	resp, err = alice.PostForm(srv.URL+"/products/edit/1", edit)
	if err != nil {
		t.Fatalf("alice edit: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Cold Soup") {
		t.Errorf("owner edit: got %d", resp.StatusCode)
	}

	resp, err = bob.Get(srv.URL + "/products/search?query=cold&user_id=1")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Cold Soup") {
		t.Errorf("search did not find the edited product")
	}

	resp, err = alice.Get(srv.URL + "/logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.Contains(string(body), "Signed in as alice") {
		t.Error("session survived logout")
	}
}
