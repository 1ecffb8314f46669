package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/buzdealz-backend/api/controllers"
	"github.com/angelmondragon/buzdealz-backend/api/middleware"
	"github.com/angelmondragon/buzdealz-backend/internal/auth"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/internal/wishlist"
	"github.com/angelmondragon/buzdealz-backend/pkg/auth/session"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
	"github.com/angelmondragon/buzdealz-backend/pkg/metrics"
	"github.com/angelmondragon/buzdealz-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
// Redis, Revocations, Gatherer and HTTPMetrics are optional.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Revocations session.RevocationChecker
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	AuthService     auth.Service
	DealService     deals.Service
	WishlistService wishlist.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(deps.HTTPMetrics),
	)

	readiness := map[string]controllers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.RequireAuth(cfg.JWT, deps.Revocations, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Revocations, logg)

	loginLimit, registerLimit := authRateLimits(cfg, deps.Redis, logg)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.With(registerLimit).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(deps.AuthService, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		})

		r.Route("/deals", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", controllers.DealsList(deps.DealService, logg))
			r.Get("/{id}", controllers.DealsGet(deps.DealService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.WishlistList(deps.WishlistService, logg))
			r.Post("/", controllers.WishlistAdd(deps.WishlistService, logg))
			r.Patch("/{dealId}", controllers.WishlistUpdateAlert(deps.WishlistService, logg))
			r.Delete("/{dealId}", controllers.WishlistRemove(deps.WishlistService, logg))
		})
	})

	return r
}

// authRateLimits returns pass-through middleware when Redis is not configured.
func authRateLimits(cfg *config.Config, client *redis.Client, logg *logger.Logger) (func(http.Handler) http.Handler, func(http.Handler) http.Handler) {
	passthrough := func(next http.Handler) http.Handler { return next }
	if client == nil {
		return passthrough, passthrough
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	return middleware.AuthRateLimit(loginPolicy, client, logg), middleware.AuthRateLimit(registerPolicy, client, logg)
}
