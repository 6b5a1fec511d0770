package app

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-orcamento/internal/auth"
	"github.com/noah-isme/backend-orcamento/internal/cart"
	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/customer"
	"github.com/noah-isme/backend-orcamento/internal/health"
	"github.com/noah-isme/backend-orcamento/internal/kit"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/quote"
	"github.com/noah-isme/backend-orcamento/internal/ratelimit"
	"github.com/noah-isme/backend-orcamento/internal/security"
	"github.com/noah-isme/backend-orcamento/internal/settings"
)

// RouterOptions toggles the operational surface of the API.
type RouterOptions struct {
	Metrics   *obs.HTTPMetrics
	Tracing   bool
	Pprof     bool
	PprofUser string
	PprofPass string
	// StoreLimiter throttles the public storefront and login routes.
	StoreLimiter ratelimit.Limiter
	Health       map[string]health.Probe
}

// NewRouter mounts every HTTP route on a chi router.
func NewRouter(d *Dependencies, opts RouterOptions) http.Handler {
	cfg := d.Config

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: d.Catalog})
	cartHandler := &cart.Handler{Svc: d.Cart}
	authHandler := &auth.Handler{Service: d.Auth}
	authMiddleware := auth.Middleware{Service: d.Auth}
	kitHandler := &kit.Handler{Service: d.Kits}
	customerHandler := &customer.Handler{Service: d.Customers}
	settingsHandler := &settings.Handler{Service: d.Settings}
	quoteHandler := &quote.Handler{Sessions: d.Sessions, Service: d.Quotes, Products: d.Catalog, Validate: d.Validator}
	idem := common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL}
	throttle := ratelimit.Handler{
		Limiter: opts.StoreLimiter,
		OnError: func(err error) { d.Log.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if opts.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: opts.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Log}.Middleware)
	r.Use(security.CORS(cfg.CORSAllowedOrigins))
	r.Use(headerPolicy(cfg.AppEnv).Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes, MultipartMax: cfg.MaxUploadBytes}.Middleware)

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if opts.Pprof {
		r.Mount("/debug", protectPprof(middleware.Profiler(), opts.PprofUser, opts.PprofPass))
	}

	healthHandler := health.Handler{Probes: opts.Health}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	files := strings.TrimRight(cfg.StorageBaseURL, "/")
	if strings.HasPrefix(files, "/") {
		r.Handle(files+"/*", http.StripPrefix(files+"/", d.Files.Handler()))
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Group(func(pub chi.Router) {
			pub.Use(throttle.Middleware)
			pub.Post("/auth/login", authHandler.Login)
			pub.Get("/store/products", catalogHandler.Products)
			pub.Get("/store/products/{id}", catalogHandler.Product)
			pub.Get("/store/carts/{id}", cartHandler.Get)
			pub.Group(func(w chi.Router) {
				w.Use(idem.Middleware)
				w.Post("/store/carts", cartHandler.Create)
				w.Post("/store/carts/{id}/items", cartHandler.AddItem)
				w.Delete("/store/carts/{id}/items/{productId}", cartHandler.RemoveItem)
				w.Delete("/store/carts/{id}", cartHandler.Clear)
			})
		})

		v.Group(func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)
			admin.Use(auth.RequireRole(auth.RoleAdmin))

			admin.Get("/products", catalogHandler.Products)
			admin.Get("/products/{id}", catalogHandler.Product)
			admin.Get("/kits", kitHandler.List)
			admin.Get("/kits/{id}", kitHandler.Get)
			admin.Get("/customers", customerHandler.List)
			admin.Get("/customers/{id}", customerHandler.Get)
			admin.Get("/settings", settingsHandler.Get)
			admin.Get("/quote-sessions/{id}", quoteHandler.GetSession)
			admin.Get("/quotes", quoteHandler.Quotes)
			admin.Get("/quotes/{id}", quoteHandler.Quote)
			admin.Get("/quotes/{id}/document", quoteHandler.Document)

			admin.Group(func(w chi.Router) {
				w.Use(idem.Middleware)
				w.Post("/products", catalogHandler.Create)
				w.Put("/products/{id}", catalogHandler.Update)
				w.Delete("/products/{id}", catalogHandler.Delete)
				w.Put("/products/{id}/stock", catalogHandler.SetStock)
				w.Post("/products/{id}/photo", catalogHandler.UploadPhoto)

				w.Post("/kits", kitHandler.Create)
				w.Delete("/kits/{id}", kitHandler.Delete)
				w.Post("/kits/{id}/toggle", kitHandler.Toggle)

				w.Post("/customers", customerHandler.Create)
				w.Put("/customers/{id}", customerHandler.Update)

				w.Put("/settings", settingsHandler.Put)

				w.Post("/quote-sessions", quoteHandler.CreateSession)
				w.Patch("/quote-sessions/{id}", quoteHandler.PatchSession)
				w.Delete("/quote-sessions/{id}", quoteHandler.DeleteSession)
				w.Post("/quote-sessions/{id}/lines", quoteHandler.AddLine)
				w.Delete("/quote-sessions/{id}/lines/{productId}", quoteHandler.RemoveLine)
				w.Post("/quote-sessions/{id}/submit", quoteHandler.Submit)
			})
		})
	})

	return r
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorised", nil)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func headerPolicy(env string) security.HeaderPolicy {
	if env != "production" {
		return security.HeaderPolicy{}
	}
	return security.HeaderPolicy{HSTS: 365 * 24 * time.Hour, HSTSSubdomains: true}
}
