package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/stats"
)

// RankingPitcherMinIP is the projected-innings floor for pitcher rankings.
const RankingPitcherMinIP = 50

// RankingResponse wraps a top-N list.
type RankingResponse[T any] struct {
	TargetYear int    `json:"target_year"`
	SortBy     string `json:"sort_by"`
	Count      int    `json:"count"`
	Ranking    []T    `json:"ranking"`
}

// Ranked prefixes a line with its rank.
type Ranked[T any] struct {
	Rank int `json:"rank"`
	Line T   `json:"line"`
}

func sortKey(r *http.Request, def string) string {
	if v := r.URL.Query().Get("sort_by"); v != "" {
		return v
	}
	return def
}

func sortError(err error, allowed []string) *apiError {
	if errors.Is(err, forecast.ErrUnknownSort) {
		return badRequest("INVALID_SORT", "sort_by must be one of "+strings.Join(allowed, ", "))
	}
	return &apiError{status: http.StatusInternalServerError, code: "RANKING_FAILED", message: err.Error()}
}

// RankingsHitters returns the top projected batters.
// @Summary Batter rankings
// @Description Next-season batter projections ranked by a stat, descending.
// @Tags rankings
// @Produce json
// @Param top query int false "Rows to return (1-100)" default(20)
// @Param sort_by query string false "Sort key" Enums(OPS, AVG, OBP, SLG, HR, RBI, SB, wOBA, wRC+) default(OPS)
// @Success 200 {object} RankingResponse[Ranked[HitterLine]]
// @Failure 400 {object} respond.ErrorResponse
// @Router /rankings/hitters [get]
func (h *Handler) RankingsHitters(w http.ResponseWriter, r *http.Request) {
	key := sortKey(r, stats.KeyOPS)
	h.serve(w, r, h.ttl(), func(s *forecast.Snapshot) (any, *apiError) {
		top, apiErr := intQuery(r, "top", 20, 1, 100)
		if apiErr != nil {
			return nil, apiErr
		}
		rows, err := s.TopBatters(key, 0, top)
		if err != nil {
			return nil, sortError(err, forecast.BatterSortKeys)
		}
		resp := RankingResponse[Ranked[HitterLine]]{TargetYear: s.Target, SortBy: key, Count: len(rows)}
		for i, v := range rows {
			resp.Ranking = append(resp.Ranking, Ranked[HitterLine]{Rank: i + 1, Line: hitterLine(v)})
		}
		return resp, nil
	})
}

// RankingsPitchers returns the top projected pitchers.
// @Summary Pitcher rankings
// @Description Next-season pitcher projections with at least 50 projected IP, ranked by a stat. ERA and WHIP rank ascending.
// @Tags rankings
// @Produce json
// @Param top query int false "Rows to return (1-100)" default(20)
// @Param sort_by query string false "Sort key" Enums(ERA, WHIP, W, SO, SV) default(ERA)
// @Success 200 {object} RankingResponse[Ranked[PitcherLine]]
// @Failure 400 {object} respond.ErrorResponse
// @Router /rankings/pitchers [get]
func (h *Handler) RankingsPitchers(w http.ResponseWriter, r *http.Request) {
	key := sortKey(r, stats.KeyERA)
	h.serve(w, r, h.ttl(), func(s *forecast.Snapshot) (any, *apiError) {
		top, apiErr := intQuery(r, "top", 20, 1, 100)
		if apiErr != nil {
			return nil, apiErr
		}
		rows, err := s.TopPitchers(key, RankingPitcherMinIP, top)
		if err != nil {
			return nil, sortError(err, forecast.PitcherSortKeys)
		}
		resp := RankingResponse[Ranked[PitcherLine]]{TargetYear: s.Target, SortBy: key, Count: len(rows)}
		for i, p := range rows {
			resp.Ranking = append(resp.Ranking, Ranked[PitcherLine]{Rank: i + 1, Line: pitcherLine(p)})
		}
		return resp, nil
	})
}
