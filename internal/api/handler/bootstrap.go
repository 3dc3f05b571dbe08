package handler

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/forecast"
)

// Entity is one autofill entry.
type Entity struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Team   string `json:"team,omitempty"`
	League string `json:"league,omitempty"`
}

// AutofillResponse lists every searchable name in the current snapshot.
type AutofillResponse struct {
	TargetYear int      `json:"target_year"`
	Count      int      `json:"count"`
	Entities   []Entity `json:"entities"`
}

// GetAutofill returns every projected player and every team, used for
// frontend search/autofill.
// @Summary Get autofill entities
// @Description Returns every projected batter, pitcher and team for the current target year.
// @Tags bootstrap
// @Produce json
// @Success 200 {object} AutofillResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /autofill [get]
func (h *Handler) GetAutofill(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ttl(), func(s *forecast.Snapshot) (any, *apiError) {
		var out []Entity
		for _, t := range config.TeamRegistry {
			out = append(out, Entity{Type: "team", Name: t.Name, League: t.League})
		}
		for _, b := range s.Batters {
			out = append(out, Entity{Type: "batter", Name: b.Player, Team: b.Team, League: config.LeagueOf(b.Team)})
		}
		for _, p := range s.Pitchers {
			out = append(out, Entity{Type: "pitcher", Name: p.Player, Team: p.Team, League: config.LeagueOf(p.Team)})
		}
		slices.SortStableFunc(out, func(a, b Entity) int {
			if c := cmp.Compare(a.Type, b.Type); c != 0 {
				return c
			}
			return cmp.Compare(a.Name, b.Name)
		})
		return AutofillResponse{TargetYear: s.Target, Count: len(out), Entities: out}, nil
	})
}
