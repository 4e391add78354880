package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/creatorhub-backend/api/controllers"
	"github.com/angelmondragon/creatorhub-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/creatorhub-backend/internal/checkout"
	"github.com/angelmondragon/creatorhub-backend/pkg/config"
	"github.com/angelmondragon/creatorhub-backend/pkg/db"
	"github.com/angelmondragon/creatorhub-backend/pkg/logger"
	"github.com/angelmondragon/creatorhub-backend/pkg/redis"
)

// Dependencies groups what the HTTP surface needs. Nil pingers are skipped by
// the readiness probe and a nil metrics handler disables the metrics route.
type Dependencies struct {
	DB              db.Pinger
	Redis           redis.Pinger
	Idempotency     redis.IdempotencyStore
	CheckoutService checkoutsvc.Service
	CheckoutRepo    checkoutsvc.Repository
	MetricsHandler  http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	})

	if deps.MetricsHandler != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/checkout", func(r chi.Router) {
			r.With(middleware.Idempotency(deps.Idempotency, cfg.Eventing.IdempotencyTTL, logg)).
				Post("/", controllers.Checkout(deps.CheckoutService, logg))
			r.Get("/{checkoutGroupId}", controllers.CheckoutGroup(deps.CheckoutRepo, logg))
		})
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["db"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}
