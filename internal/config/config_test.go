package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDataEndYear(t *testing.T) {
	assert.Equal(t, 2025, DefaultDataEndYear(time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2026, DefaultDataEndYear(time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, DefaultDataEndYear(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NPB_DATA_END_YEAR", "2024")
	t.Setenv("NPB_DATA_DIR", "/srv/npb")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REFRESH_INTERVAL_MINUTES", "15")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2024, cfg.DataEndYear)
	assert.Equal(t, 2025, cfg.TargetYear())
	assert.Equal(t, "/srv/npb", cfg.DataDir)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Error(t, cfg.RequireDatabase())

	t.Setenv("NPB_DATA_END_YEAR", "1999")
	_, err = Load()
	assert.Error(t, err)
}

func TestTeamRegistry(t *testing.T) {
	require.Len(t, TeamRegistry, 12)
	counts := map[string]int{}
	for _, team := range TeamRegistry {
		counts[team.League]++
	}
	assert.Equal(t, 6, counts[Central])
	assert.Equal(t, 6, counts[Pacific])
	assert.Equal(t, Pacific, LeagueOf("楽天"))
	assert.Equal(t, "", LeagueOf("Yankees"))
}

func TestLoadModelOverlay(t *testing.T) {
	m, err := LoadModel("")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel(), m)

	path := filepath.Join(t.TempDir(), "model.yaml")
	body := "marcel:\n  regression_pa: 900\npythag:\n  uncertainty_per_player: 2.0\n  season_games:\n    2020: 120\n    2026: 143\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m, err = LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, 900.0, m.Marcel.RegressionPA)
	assert.Equal(t, 600.0, m.Marcel.RegressionIP, "unset fields keep defaults")
	assert.Equal(t, 2.0, m.Pythag.UncertaintyPerPlayer)
	assert.Equal(t, 143, m.Pythag.SeasonGames[2026])

	require.NoError(t, os.WriteFile(path, []byte("marcel:\n  weights: [5, 4]\n"), 0o644))
	_, err = LoadModel(path)
	assert.Error(t, err)

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
