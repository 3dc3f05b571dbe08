package handler

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/albapepper/npb-projections/internal/cache"
	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/pythag"
)

// RecordLine is one team-season's realised and Pythagorean record.
type RecordLine struct {
	Rank     int     `json:"rank,omitempty"`
	Team     string  `json:"team"`
	League   string  `json:"league"`
	Year     int     `json:"year"`
	W        int     `json:"w"`
	L        int     `json:"l"`
	D        int     `json:"d"`
	WinPct   float64 `json:"win_pct"`
	PythPct  float64 `json:"pyth_pct"`
	PythWins float64 `json:"pyth_wins"`
	Gap      float64 `json:"gap"`
	RS       float64 `json:"rs"`
	RA       float64 `json:"ra"`
}

func recordLine(r pythag.Record) RecordLine {
	return RecordLine{
		Team: r.Team, League: r.League, Year: r.Year,
		W: r.W, L: r.L, D: r.D,
		WinPct:   round(r.WinPct, 3),
		PythPct:  round(r.PythPct, 3),
		PythWins: round(r.PythWins, 1),
		Gap:      round(r.Gap, 1),
		RS:       r.RS,
		RA:       r.RA,
	}
}

// TeamResponse is one team's record for a season.
type TeamResponse struct {
	Team     string       `json:"team"`
	Year     int          `json:"year"`
	Exponent float64      `json:"exponent"`
	Records  []RecordLine `json:"records"`
}

// PredictTeam returns a team's Pythagorean record for a season.
// @Summary Team Pythagorean record
// @Description Expected win percentage from runs scored and allowed (k=1.72) against the realised record. gap is realised minus expected wins.
// @Tags teams
// @Produce json
// @Param name path string true "Team name"
// @Param year query int false "Season (default: last completed season)"
// @Success 200 {object} TeamResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /predict/team/{name} [get]
func (h *Handler) PredictTeam(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	h.serve(w, r, cache.TTLHistorical, func(s *forecast.Snapshot) (any, *apiError) {
		if config.LeagueOf(name) == "" {
			return nil, notFound("Unknown team: " + name)
		}
		year, apiErr := yearQuery(r, s)
		if apiErr != nil {
			return nil, apiErr
		}
		resp := TeamResponse{Team: name, Year: year}
		for _, rec := range s.TeamRecords(name) {
			if rec.Year == year {
				resp.Exponent = rec.Exponent
				resp.Records = append(resp.Records, recordLine(rec))
			}
		}
		if len(resp.Records) == 0 {
			return nil, notFound("No record for " + name + " in the requested season")
		}
		return resp, nil
	})
}

// PythagoreanResponse is every team's record for a season, ranked by
// expected win percentage.
type PythagoreanResponse struct {
	Year     int          `json:"year"`
	Count    int          `json:"count"`
	Accuracy []AccLine    `json:"accuracy,omitempty"`
	Teams    []RecordLine `json:"teams"`
}

// AccLine is one exponent's fit for the season.
type AccLine struct {
	Exponent float64 `json:"exponent"`
	N        int     `json:"n"`
	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
}

// Pythagorean returns all teams' Pythagorean records for a season.
// @Summary Pythagorean standings
// @Description Every team ranked by expected win percentage for a season, with the season's fit for k=1.72 and k=1.83.
// @Tags teams
// @Produce json
// @Param year query int false "Season (default: last completed season)"
// @Success 200 {object} PythagoreanResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /pythagorean [get]
func (h *Handler) Pythagorean(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, cache.TTLHistorical, func(s *forecast.Snapshot) (any, *apiError) {
		year, apiErr := yearQuery(r, s)
		if apiErr != nil {
			return nil, apiErr
		}
		recs := s.YearRecords(year)
		if len(recs) == 0 {
			return nil, notFound("No standings for the requested season")
		}
		slices.SortStableFunc(recs, func(a, b pythag.Record) int {
			switch {
			case a.PythPct > b.PythPct:
				return -1
			case a.PythPct < b.PythPct:
				return 1
			}
			return strings.Compare(a.Team, b.Team)
		})
		resp := PythagoreanResponse{Year: year, Count: len(recs)}
		for i, rec := range recs {
			line := recordLine(rec)
			line.Rank = i + 1
			resp.Teams = append(resp.Teams, line)
		}
		for _, a := range s.Accuracy {
			if a.Year == year {
				resp.Accuracy = append(resp.Accuracy, AccLine{Exponent: a.Exponent, N: a.N, MAE: round(a.MAE, 2), RMSE: round(a.RMSE, 2)})
			}
		}
		return resp, nil
	})
}

// StandingLine is one projected standings row.
type StandingLine struct {
	Rank        int     `json:"rank"`
	Team        string  `json:"team"`
	League      string  `json:"league"`
	G           int     `json:"g"`
	RS          float64 `json:"rs"`
	RA          float64 `json:"ra"`
	WinPct      float64 `json:"win_pct"`
	Wins        float64 `json:"wins"`
	Losses      float64 `json:"losses"`
	Batters     int     `json:"batters"`
	Pitchers    int     `json:"pitchers"`
	Unprojected int     `json:"unprojected"`
	Uncertainty float64 `json:"uncertainty"`
}

// StandingsResponse is the projected table for the target year.
type StandingsResponse struct {
	TargetYear int            `json:"target_year"`
	League     string         `json:"league,omitempty"`
	Teams      []StandingLine `json:"teams"`
}

// ProjectedStandings returns next season's projected standings.
// @Summary Projected standings
// @Description Next-season standings from projected player value, ranked within league. uncertainty is in wins.
// @Tags teams
// @Produce json
// @Param league query string false "League filter" Enums(CL, PL)
// @Success 200 {object} StandingsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /standings/projected [get]
func (h *Handler) ProjectedStandings(w http.ResponseWriter, r *http.Request) {
	league := strings.ToUpper(r.URL.Query().Get("league"))
	h.serve(w, r, h.ttl(), func(s *forecast.Snapshot) (any, *apiError) {
		if league != "" && league != config.Central && league != config.Pacific {
			return nil, badRequest("INVALID_LEAGUE", "league must be CL or PL")
		}
		if len(s.Standings) == 0 {
			return nil, notFound("No projected standings")
		}
		resp := StandingsResponse{TargetYear: s.Target, League: league}
		for _, t := range s.Standings {
			if league != "" && t.League != league {
				continue
			}
			resp.Teams = append(resp.Teams, StandingLine{
				Rank: t.Rank, Team: t.Team, League: t.League, G: t.G,
				RS: round(t.RS, 1), RA: round(t.RA, 1),
				WinPct: round(t.WinPct, 3), Wins: round(t.Wins, 1), Losses: round(t.Losses, 1),
				Batters: t.Batters, Pitchers: t.Pitchers,
				Unprojected: t.Unprojected, Uncertainty: round(t.Uncertainty, 1),
			})
		}
		return resp, nil
	})
}

// ttl is the cache lifetime for target-year responses.
func (h *Handler) ttl() time.Duration {
	if h.cfg != nil && h.cfg.CacheTTL > 0 {
		return h.cfg.CacheTTL
	}
	return cache.TTLProjections
}
