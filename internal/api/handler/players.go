package handler

import (
	"net/http"

	"github.com/albapepper/npb-projections/internal/cache"
	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/saber"
	"github.com/albapepper/npb-projections/internal/stats"
)

// HitterLine is one batter projection in API form.
type HitterLine struct {
	Player    string   `json:"player"`
	Team      string   `json:"team"`
	Age       *int     `json:"age,omitempty"`
	DataYears int      `json:"data_years"`
	PA        float64  `json:"pa"`
	OPS       float64  `json:"ops"`
	AVG       float64  `json:"avg"`
	OBP       float64  `json:"obp"`
	SLG       float64  `json:"slg"`
	HR        float64  `json:"hr"`
	RBI       float64  `json:"rbi"`
	SB        float64  `json:"sb"`
	WOBA      *float64 `json:"woba,omitempty"`
	WRCPlus   *float64 `json:"wrc_plus,omitempty"`
	WRAA      *float64 `json:"wraa,omitempty"`
	Value     string   `json:"value_source"`
	Baseline  string   `json:"baseline"`
}

// PitcherLine is one pitcher projection in API form.
type PitcherLine struct {
	Player    string  `json:"player"`
	Team      string  `json:"team"`
	Age       *int    `json:"age,omitempty"`
	DataYears int     `json:"data_years"`
	IP        float64 `json:"ip"`
	ERA       float64 `json:"era"`
	WHIP      float64 `json:"whip"`
	W         float64 `json:"w"`
	L         float64 `json:"l"`
	SV        float64 `json:"sv"`
	SO        float64 `json:"so"`
	Baseline  string  `json:"baseline"`
}

// SearchResponse wraps name search results.
type SearchResponse[T any] struct {
	Query      string `json:"query"`
	TargetYear int    `json:"target_year"`
	Count      int    `json:"count"`
	Results    []T    `json:"results"`
}

func agePtr(p marcel.Projection) *int {
	if !p.AgeKnown {
		return nil
	}
	a := p.Age
	return &a
}

func ptr(v float64) *float64 { return &v }

func hitterLine(v forecast.ValuedProjection) HitterLine {
	line := HitterLine{
		Player:    v.Player,
		Team:      v.Team,
		Age:       agePtr(v.Projection),
		DataYears: v.DataYears,
		PA:        round(v.Time, 0),
		OPS:       round(v.Rate(stats.KeyOPS), 3),
		AVG:       round(v.Rate(stats.KeyAVG), 3),
		OBP:       round(v.Rate(stats.KeyOBP), 3),
		SLG:       round(v.Rate(stats.KeySLG), 3),
		HR:        round(v.Count(stats.KeyHR), 1),
		RBI:       round(v.Count(stats.KeyRBI), 1),
		SB:        round(v.Count(stats.KeySB), 1),
		Value:     v.Value.Source.String(),
		Baseline:  v.Baseline.String(),
	}
	if v.Value.Source != saber.Unavailable {
		line.WOBA = ptr(round(v.Value.WOBA, 3))
		line.WRCPlus = ptr(round(v.Value.WRCPlus, 1))
		line.WRAA = ptr(round(v.Value.WRAA, 1))
	}
	return line
}

func pitcherLine(p marcel.Projection) PitcherLine {
	return PitcherLine{
		Player:    p.Player,
		Team:      p.Team,
		Age:       agePtr(p),
		DataYears: p.DataYears,
		IP:        round(p.Time, 1),
		ERA:       round(p.Rate(stats.KeyERA), 2),
		WHIP:      round(p.Rate(stats.KeyWHIP), 2),
		W:         round(p.Count(stats.KeyW), 1),
		L:         round(p.Count(stats.KeyL), 1),
		SV:        round(p.Count(stats.KeySV), 1),
		SO:        round(p.Count(stats.KeySO), 1),
		Baseline:  p.Baseline.String(),
	}
}

// PredictHitter returns batter projections matching a name.
// @Summary Batter projection
// @Description Partial-name search over next-season batter projections, with wOBA / wRC+ / wRAA where available.
// @Tags projections
// @Produce json
// @Param name path string true "Player name (partial match)"
// @Success 200 {object} SearchResponse[HitterLine]
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /predict/hitter/{name} [get]
func (h *Handler) PredictHitter(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	h.serve(w, r, h.ttl(), func(s *forecast.Snapshot) (any, *apiError) {
		hits := s.SearchBatters(name)
		if name == "" || len(hits) == 0 {
			return nil, notFound("Player not found: " + name)
		}
		out := make([]HitterLine, len(hits))
		for i, v := range hits {
			out[i] = hitterLine(v)
		}
		return SearchResponse[HitterLine]{Query: name, TargetYear: s.Target, Count: len(out), Results: out}, nil
	})
}

// PredictPitcher returns pitcher projections matching a name.
// @Summary Pitcher projection
// @Description Partial-name search over next-season pitcher projections.
// @Tags projections
// @Produce json
// @Param name path string true "Player name (partial match)"
// @Success 200 {object} SearchResponse[PitcherLine]
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /predict/pitcher/{name} [get]
func (h *Handler) PredictPitcher(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	h.serve(w, r, h.ttl(), func(s *forecast.Snapshot) (any, *apiError) {
		hits := s.SearchPitchers(name)
		if name == "" || len(hits) == 0 {
			return nil, notFound("Player not found: " + name)
		}
		out := make([]PitcherLine, len(hits))
		for i, p := range hits {
			out[i] = pitcherLine(p)
		}
		return SearchResponse[PitcherLine]{Query: name, TargetYear: s.Target, Count: len(out), Results: out}, nil
	})
}

// SeasonValueLine is one historical season's value line.
type SeasonValueLine struct {
	Player  string   `json:"player"`
	Team    string   `json:"team"`
	Year    int      `json:"year"`
	PA      int      `json:"pa"`
	AVG     float64  `json:"avg"`
	OBP     float64  `json:"obp"`
	SLG     float64  `json:"slg"`
	WOBA    *float64 `json:"woba,omitempty"`
	WRCPlus *float64 `json:"wrc_plus,omitempty"`
	WRAA    *float64 `json:"wraa,omitempty"`
}

// SabermetricsResponse wraps a player's season values.
type SabermetricsResponse struct {
	Query   string            `json:"query"`
	Year    *int              `json:"year,omitempty"`
	Count   int               `json:"count"`
	Seasons []SeasonValueLine `json:"seasons"`
}

// Sabermetrics returns a player's wOBA / wRC+ / wRAA by season.
// @Summary Season value metrics
// @Description wOBA, wRC+ and wRAA per season scaled to each season's league environment. wRC+ 100 is league average.
// @Tags sabermetrics
// @Produce json
// @Param name path string true "Player name (partial match)"
// @Param year query int false "Season (omit for all seasons)"
// @Success 200 {object} SabermetricsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /sabermetrics/{name} [get]
func (h *Handler) Sabermetrics(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	h.serve(w, r, cache.TTLHistorical, func(s *forecast.Snapshot) (any, *apiError) {
		var year *int
		if r.URL.Query().Get("year") != "" {
			y, apiErr := yearQuery(r, s)
			if apiErr != nil {
				return nil, apiErr
			}
			year = &y
		}
		resp := SabermetricsResponse{Query: name, Year: year}
		for _, v := range s.PlayerValues(name) {
			if year != nil && v.Year != *year {
				continue
			}
			line := SeasonValueLine{
				Player: v.Player, Team: v.Team, Year: v.Year, PA: v.PA,
				AVG: round(v.AVG, 3), OBP: round(v.OBP, 3), SLG: round(v.SLG, 3),
			}
			if v.Defined {
				line.WOBA = ptr(round(v.WOBA, 3))
				line.WRCPlus = ptr(round(v.WRCPlus, 1))
				line.WRAA = ptr(round(v.WRAA, 1))
			}
			resp.Seasons = append(resp.Seasons, line)
		}
		if name == "" || len(resp.Seasons) == 0 {
			return nil, notFound("Player not found: " + name)
		}
		resp.Count = len(resp.Seasons)
		return resp, nil
	})
}
