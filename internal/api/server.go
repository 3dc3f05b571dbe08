// Package api assembles the HTTP router.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/npb-projections/internal/api/handler"
	"github.com/albapepper/npb-projections/internal/cache"
	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/forecast"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes. db may be nil when no database is configured.
func NewRouter(snapshots *forecast.Holder, store cache.Store, db handler.HealthChecker, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	h := handler.New(snapshots, store, cfg, db)

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		// Projections
		r.Get("/predict/hitter/{name}", h.PredictHitter)
		r.Get("/predict/pitcher/{name}", h.PredictPitcher)
		r.Get("/predict/team/{name}", h.PredictTeam)

		// Value metrics
		r.Get("/sabermetrics/{name}", h.Sabermetrics)

		// Rankings
		r.Get("/rankings/hitters", h.RankingsHitters)
		r.Get("/rankings/pitchers", h.RankingsPitchers)

		// Teams
		r.Get("/pythagorean", h.Pythagorean)
		r.Get("/standings/projected", h.ProjectedStandings)

		// Bootstrap / autofill
		r.Get("/autofill", h.GetAutofill)
	})

	return r
}
