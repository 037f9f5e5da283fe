package serve

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/crucial707/product-catalog/internal/app"
	"github.com/crucial707/product-catalog/internal/handlers"
	"github.com/crucial707/product-catalog/internal/middleware"
)

// NewRouter builds the full HTTP surface of the catalog.
func NewRouter(a *app.App) http.Handler {
	cfg := a.Config
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.FormBody(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.Session(a.Resolver))

	// Operational endpoints
	var pinger handlers.Pinger
	if a.DB != nil {
		pinger = a.DB
	}
	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(pinger))
	r.Handle("/metrics", promhttp.Handler())

	authH := &handlers.AuthHandler{Accounts: a.Service, SecureCookie: cfg.CookieSecure}
	productH := &handlers.ProductHandler{Products: a.Service}
	limiter := middleware.AuthRateLimiter(cfg.AuthRateLimit)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products/read", http.StatusFound)
	})

	// Accounts
	r.Get("/login_form", authH.LoginForm)
	r.With(limiter.Middleware).Post("/login_form", authH.Signup)
	r.With(limiter.Middleware).Post("/login", authH.Login)
	r.Get("/logout", authH.Logout)

	// Public product pages
	r.Get("/products/read", productH.ReadProducts)
	r.Get("/products/search", productH.SearchProducts)

	// Signed-in product pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity)
		r.Get("/products/create", productH.CreateForm)
		r.Post("/products/create", productH.CreateProduct)
		r.Get("/products/edit/{id}", productH.EditForm)
		r.Post("/products/edit/{id}", productH.UpdateProduct)
	})

	return otelhttp.NewHandler(r, "catalog")
}
