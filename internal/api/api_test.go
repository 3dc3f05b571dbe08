package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/npb-projections/internal/cache"
	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/saber"
)

func testSnapshot() *forecast.Snapshot {
	batter := func(name, team string, pa, ops, hr float64) marcel.Projection {
		return marcel.Projection{
			Player: name, Team: team, Side: marcel.Batter, TargetYear: 2026, DataYears: 3, Time: pa,
			Rates:  map[string]float64{"OPS": ops, "AVG": .270, "OBP": .340, "SLG": ops - .340},
			Counts: map[string]float64{"HR": hr, "RBI": hr * 3},
		}
	}
	pitcher := func(name, team string, ip, era float64) marcel.Projection {
		return marcel.Projection{
			Player: name, Team: team, Side: marcel.Pitcher, TargetYear: 2026, DataYears: 3, Time: ip,
			Rates:  map[string]float64{"ERA": era, "WHIP": 1.2},
			Counts: map[string]float64{"W": 8, "SO": 120},
		}
	}
	return &forecast.Snapshot{
		Target:  2026,
		BuiltAt: time.Now(),
		Batters: []marcel.Projection{
			batter("村上 宗隆", "ヤクルト", 560, .950, 35),
			batter("佐藤 輝明", "阪神", 540, .820, 28),
			batter("近本 光司", "阪神", 580, .760, 8),
		},
		BatterValues: []saber.Value{
			{WOBA: .400, WRCPlus: 160, WRAA: 35, Source: saber.Direct},
			{WOBA: .350, WRCPlus: 125, WRAA: 14, Source: saber.Regression},
			{Source: saber.Unavailable},
		},
		Pitchers: []marcel.Projection{
			pitcher("才木 浩人", "阪神", 150, 2.10),
			pitcher("小川 泰弘", "ヤクルト", 130, 3.60),
			pitcher("中継ぎ", "ヤクルト", 40, 1.50),
		},
		SeasonValues: []saber.SeasonValue{
			{Player: "村上 宗隆", Team: "ヤクルト", Year: 2024, PA: 600, Defined: true, WOBA: .390, WRCPlus: 150, WRAA: 30},
			{Player: "村上 宗隆", Team: "ヤクルト", Year: 2025, PA: 300, Defined: true, WOBA: .410, WRCPlus: 165, WRAA: 20},
		},
		Records: []pythag.Record{
			{Team: "阪神", League: config.Central, Year: 2025, W: 85, L: 54, D: 4, RS: 600, RA: 450, Exponent: 1.72, PythPct: .620, PythWins: 86.2, Gap: -1.2},
			{Team: "ヤクルト", League: config.Central, Year: 2025, W: 57, L: 79, D: 7, RS: 450, RA: 600, Exponent: 1.72, PythPct: .380, PythWins: 51.7, Gap: 5.3},
		},
		Accuracy: []pythag.Accuracy{{Exponent: 1.72, Year: 2025, N: 2, MAE: 3.2, RMSE: 3.8}},
		Standings: []pythag.TeamProjection{
			{Year: 2026, Team: "阪神", League: config.Central, Rank: 1, G: 143, Wins: 80, Losses: 63},
			{Year: 2026, Team: "ソフトバンク", League: config.Pacific, Rank: 1, G: 143, Wins: 82, Losses: 61},
		},
	}
}

func newServer(t *testing.T, loaded bool, cfg *config.Config) (http.Handler, *forecast.Holder) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{CORSAllowOrigins: []string{"*"}}
	}
	var holder forecast.Holder
	if loaded {
		holder.Store(testSnapshot())
	}
	c := cache.New(true)
	t.Cleanup(c.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(&holder, c, nil, cfg, logger), &holder
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthBeforeAndAfterSnapshot(t *testing.T) {
	h, holder := newServer(t, false, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/health/").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/v1/rankings/hitters").Code)

	holder.Store(testSnapshot())
	w := get(t, h, "/health/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2026), decode(t, w)["target_year"])

	db := decode(t, get(t, h, "/health/db"))
	assert.Equal(t, "not_configured", db["database"])
}

func TestPredictHitterSearchAndCaching(t *testing.T) {
	h, _ := newServer(t, true, nil)
	path := "/api/v1/predict/hitter/" + url.PathEscape("村上")

	w := get(t, h, path)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.NotEmpty(t, w.Header().Get("X-Process-Time"))
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	first := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "村上 宗隆", first["player"])
	assert.Equal(t, .4, first["woba"])
	assert.Equal(t, "direct", first["value_source"])

	etag := w.Header().Get("ETag")
	w = get(t, h, path)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, etag, w.Header().Get("ETag"))

	w = get(t, h, path, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestPredictHitterUnavailableValueOmitted(t *testing.T) {
	h, _ := newServer(t, true, nil)
	w := get(t, h, "/api/v1/predict/hitter/"+url.PathEscape("近本"))
	require.Equal(t, http.StatusOK, w.Code)
	first := decode(t, w)["results"].([]any)[0].(map[string]any)
	assert.NotContains(t, first, "woba")
	assert.Equal(t, "unavailable", first["value_source"])
}

func TestPredictNotFound(t *testing.T) {
	h, _ := newServer(t, true, nil)
	w := get(t, h, "/api/v1/predict/pitcher/"+url.PathEscape("存在しない"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["error"].(map[string]any)["code"])
}

func TestPredictTeam(t *testing.T) {
	h, _ := newServer(t, true, nil)
	w := get(t, h, "/api/v1/predict/team/"+url.PathEscape("阪神"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(2025), body["year"])
	rec := body["records"].([]any)[0].(map[string]any)
	assert.Equal(t, -1.2, rec["gap"])

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/predict/team/"+url.PathEscape("阪神")+"?year=2026").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/predict/team/Yankees").Code)
}

func TestSabermetricsYearFilter(t *testing.T) {
	h, _ := newServer(t, true, nil)
	path := "/api/v1/sabermetrics/" + url.PathEscape("村上")

	body := decode(t, get(t, h, path))
	seasons := body["seasons"].([]any)
	require.Len(t, seasons, 2)
	assert.Equal(t, float64(2025), seasons[0].(map[string]any)["year"])

	body = decode(t, get(t, h, path+"?year=2024"))
	assert.Equal(t, float64(1), body["count"])

	assert.Equal(t, http.StatusNotFound, get(t, h, path+"?year=2019").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, path+"?year=abc").Code)
}

func TestRankings(t *testing.T) {
	h, _ := newServer(t, true, nil)

	body := decode(t, get(t, h, "/api/v1/rankings/hitters?top=2&sort_by=HR"))
	ranking := body["ranking"].([]any)
	require.Len(t, ranking, 2)
	top := ranking[0].(map[string]any)
	assert.Equal(t, float64(1), top["rank"])
	assert.Equal(t, "村上 宗隆", top["line"].(map[string]any)["player"])

	body = decode(t, get(t, h, "/api/v1/rankings/pitchers"))
	ranking = body["ranking"].([]any)
	require.Len(t, ranking, 2, "pitchers under the innings floor are excluded")
	assert.Equal(t, "才木 浩人", ranking[0].(map[string]any)["line"].(map[string]any)["player"])

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/rankings/hitters?sort_by=XYZ").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/rankings/hitters?top=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/rankings/pitchers?top=101").Code)
}

func TestPythagoreanRanksByExpectedPct(t *testing.T) {
	h, _ := newServer(t, true, nil)
	body := decode(t, get(t, h, "/api/v1/pythagorean"))
	teams := body["teams"].([]any)
	require.Len(t, teams, 2)
	assert.Equal(t, "阪神", teams[0].(map[string]any)["team"])
	assert.Len(t, body["accuracy"], 1)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/pythagorean?year=2016").Code)
}

func TestProjectedStandingsLeagueFilter(t *testing.T) {
	h, _ := newServer(t, true, nil)
	body := decode(t, get(t, h, "/api/v1/standings/projected?league=pl"))
	teams := body["teams"].([]any)
	require.Len(t, teams, 1)
	assert.Equal(t, "ソフトバンク", teams[0].(map[string]any)["team"])

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/standings/projected?league=AL").Code)
}

func TestProjectedStandingsMissing(t *testing.T) {
	h, holder := newServer(t, true, nil)
	s := testSnapshot()
	s.Standings = nil
	holder.Store(s)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/standings/projected").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/predict/hitter/"+url.PathEscape("村上")).Code)
}

func TestAutofill(t *testing.T) {
	h, _ := newServer(t, true, nil)
	body := decode(t, get(t, h, "/api/v1/autofill"))
	assert.Equal(t, float64(len(config.TeamRegistry)+6), body["count"])
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Hour,
	}
	h, _ := newServer(t, true, cfg)
	assert.Equal(t, http.StatusOK, get(t, h, "/").Code)
	w := get(t, h, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}
