// Package handler provides HTTP handlers for all API endpoints.
// Handlers read the current forecast snapshot; responses are JSON encoded
// once per snapshot and served from cache afterwards.
package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/npb-projections/internal/api/respond"
	"github.com/albapepper/npb-projections/internal/cache"
	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/forecast"
)

// HealthChecker reports database reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	snapshots *forecast.Holder
	cache     cache.Store
	cfg       *config.Config
	db        HealthChecker
}

// New creates a Handler with shared dependencies. db may be nil when no
// database is configured.
func New(snapshots *forecast.Holder, c cache.Store, cfg *config.Config, db HealthChecker) *Handler {
	return &Handler{snapshots: snapshots, cache: c, cfg: cfg, db: db}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, target year and available endpoints.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"name":    "NPB Projections API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"endpoints": []string{
			"/api/v1/predict/hitter/{name}",
			"/api/v1/predict/pitcher/{name}",
			"/api/v1/predict/team/{name}",
			"/api/v1/sabermetrics/{name}",
			"/api/v1/rankings/hitters",
			"/api/v1/rankings/pitchers",
			"/api/v1/pythagorean",
			"/api/v1/standings/projected",
			"/api/v1/autofill",
		},
	}
	if s := h.snapshots.Load(); s != nil {
		info["target_year"] = s.Target
		info["built_at"] = s.BuiltAt.Format(time.RFC3339)
	}
	respond.WriteUncached(w, http.StatusOK, info)
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and whether a snapshot is loaded.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s := h.snapshots.Load()
	if s == nil {
		respond.WriteUncached(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "starting",
			"snapshot":  false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteUncached(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"snapshot":    true,
		"target_year": s.Target,
		"built_at":    s.BuiltAt.Format(time.RFC3339),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when publishing is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteUncached(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"database":  "not_configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteUncached(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteUncached(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns response cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteUncached(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(r.Context()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// --------------------------------------------------------------------------
// Shared plumbing
// --------------------------------------------------------------------------

// apiError is a handler failure mapped to a status and code.
type apiError struct {
	status  int
	code    string
	message string
}

func notFound(msg string) *apiError {
	return &apiError{status: http.StatusNotFound, code: "NOT_FOUND", message: msg}
}

func badRequest(code, msg string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: code, message: msg}
}

// serve runs build against the current snapshot, caching the encoded
// response under the snapshot's version and the request URI.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, ttl time.Duration, build func(*forecast.Snapshot) (any, *apiError)) {
	s := h.snapshots.Load()
	if s == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "Projections are not loaded yet")
		return
	}

	key := cache.Key(s.BuiltAt.UnixNano(), r.URL.RequestURI())
	if data, etag, ok := h.cache.Get(r.Context(), key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, apiErr := build(s)
	if apiErr != nil {
		respond.WriteError(w, apiErr.status, apiErr.code, apiErr.message)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response", err.Error())
		return
	}
	etag := h.cache.Set(r.Context(), key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// nameParam returns the decoded, normalised {name} path parameter.
// Full-width spaces become ASCII spaces.
func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if dec, err := url.PathUnescape(raw); err == nil {
		raw = dec
	}
	return normalise(raw)
}

func normalise(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "\u3000", " "))
}

// intQuery parses an optional integer query parameter within [lo, hi].
func intQuery(r *http.Request, key string, def, lo, hi int) (int, *apiError) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, badRequest("INVALID_"+strings.ToUpper(key), key+" must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
	return n, nil
}

// yearQuery parses ?year= within the loaded history, defaulting to the
// last completed season.
func yearQuery(r *http.Request, s *forecast.Snapshot) (int, *apiError) {
	return intQuery(r, "year", s.Target-1, config.DataStartYear, s.Target-1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
