// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/project.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Team registry — the twelve NPB franchises by league
// --------------------------------------------------------------------------

const (
	Central = "CL"
	Pacific = "PL"
)

type TeamConfig struct {
	Name   string
	League string
}

var TeamRegistry = []TeamConfig{
	{Name: "巨人", League: Central},
	{Name: "阪神", League: Central},
	{Name: "広島", League: Central},
	{Name: "DeNA", League: Central},
	{Name: "ヤクルト", League: Central},
	{Name: "中日", League: Central},
	{Name: "ソフトバンク", League: Pacific},
	{Name: "オリックス", League: Pacific},
	{Name: "西武", League: Pacific},
	{Name: "ロッテ", League: Pacific},
	{Name: "日本ハム", League: Pacific},
	{Name: "楽天", League: Pacific},
}

// LeagueOf returns the league a team plays in, "" when unknown.
func LeagueOf(team string) string {
	for _, t := range TeamRegistry {
		if t.Name == team {
			return t.League
		}
	}
	return ""
}

// DataStartYear is the first season the data directory is expected to hold.
const DataStartYear = 2015

// DefaultDataEndYear is the most recently finished season: the current year
// from November on, otherwise the previous year.
func DefaultDataEndYear(now time.Time) int {
	if now.Month() >= time.November {
		return now.Year()
	}
	return now.Year() - 1
}

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	BatterProjectionsTable  = "batter_projections"
	PitcherProjectionsTable = "pitcher_projections"
	BatterValuesTable       = "batter_values"
	TeamRecordsTable        = "team_records"
	ProjectedStandingsTable = "projected_standings"
	PublishLogTable         = "publish_log"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Data
	DataDir     string
	OutputDir   string
	DataEndYear int
	ModelFile   string

	// Database (optional; only publish and the refresher's publish step need it)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration
	RedisURL     string

	// Refresh
	RefreshInterval time.Duration
	PublishOnReload bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	endYear := envInt("NPB_DATA_END_YEAR", DefaultDataEndYear(time.Now()))
	if endYear < DataStartYear {
		return nil, fmt.Errorf("NPB_DATA_END_YEAR %d is before %d", endYear, DataStartYear)
	}

	return &Config{
		DataDir:     envOr("NPB_DATA_DIR", "data/raw"),
		OutputDir:   envOr("NPB_OUTPUT_DIR", "data/projections"),
		DataEndYear: endYear,
		ModelFile:   envOr("MODEL_PARAMS_FILE", ""),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8501",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(envInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		RedisURL:     envOr("REDIS_URL", ""),

		RefreshInterval: time.Duration(envInt("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,
		PublishOnReload: envBool("PUBLISH_ON_RELOAD", false),
	}, nil
}

// TargetYear is the season being projected.
func (c *Config) TargetYear() int { return c.DataEndYear + 1 }

// RequireDatabase errors when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
