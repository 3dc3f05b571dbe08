package marcel

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/albapepper/npb-projections/internal/league"
	"github.com/albapepper/npb-projections/internal/stats"
)

// Engine projects players for one target year at a time. It holds no
// per-run state and is safe for concurrent use.
type Engine struct {
	params Params
	births stats.Birthdays
	logger *slog.Logger
}

// NewEngine validates params and returns an engine. births may be nil.
func NewEngine(params Params, births stats.Birthdays, logger *slog.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("marcel params: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{params: params, births: births, logger: logger}, nil
}

// Params returns the engine's constants.
func (e *Engine) Params() Params { return e.params }

// season is the side-independent view of one input row.
type season struct {
	player string
	team   string
	year   int
	line   stats.Line
}

// ProjectBatters projects every batter with playing time in the three
// seasons before target. Rows from target onward are ignored.
func (e *Engine) ProjectBatters(rows []stats.BatterSeason, target int) []Projection {
	in := make([]season, 0, len(rows))
	for _, r := range rows {
		if r.Year < target {
			in = append(in, season{player: r.Player, team: r.Team, year: r.Year, line: r})
		}
	}
	return e.project(in, target, Batter, stats.BatterCategories(), e.params.RegressionPA)
}

// ProjectPitchers projects every pitcher with innings in the three seasons
// before target.
func (e *Engine) ProjectPitchers(rows []stats.PitcherSeason, target int) []Projection {
	in := make([]season, 0, len(rows))
	for _, r := range rows {
		if r.Year < target {
			in = append(in, season{player: r.Player, team: r.Team, year: r.Year, line: r})
		}
	}
	return e.project(in, target, Pitcher, stats.PitcherCategories(), e.params.RegressionIP)
}

func (e *Engine) project(rows []season, target int, side Side, cats []stats.Category, regression float64) []Projection {
	baselines := buildBaselines(rows, cats)
	lg, res := baselines.Resolve(target - 1)
	switch res.Status {
	case league.Unavailable:
		e.logger.Warn("no league baseline before target, nothing projected",
			"side", side, "target", target)
		return nil
	case league.FellBack:
		e.logger.Info("league baseline fell back",
			"side", side, "target", target, "baseline", res.Year)
	}

	// Group window rows per player; the last row for a player-year wins.
	window := make(map[string]map[int]season)
	for _, r := range rows {
		if r.year < target-len(e.params.Weights) {
			continue
		}
		if window[r.player] == nil {
			window[r.player] = make(map[int]season, len(e.params.Weights))
		}
		window[r.player][r.year] = r
	}

	out := make([]Projection, 0, len(window))
	for player, seasons := range window {
		p, ok := e.projectPlayer(player, seasons, target, side, cats, regression, lg)
		if !ok {
			continue
		}
		p.Baseline = res
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Projection) int { return strings.Compare(a.Player, b.Player) })

	e.logger.Debug("projection complete", "side", side, "target", target, "players", len(out))
	return out
}

func (e *Engine) projectPlayer(
	player string,
	seasons map[int]season,
	target int,
	side Side,
	cats []stats.Category,
	regression float64,
	lg league.Baseline,
) (Projection, bool) {
	var (
		totalWeight float64
		weightedPT  float64
		dataYears   int
		hasDetail   = true
		team        string
		teamYear    int
	)
	sums := make(map[string]float64, len(cats))

	for i, w := range e.params.Weights {
		s, ok := seasons[target-1-i]
		if !ok {
			continue
		}
		if team == "" || s.year > teamYear {
			team, teamYear = s.team, s.year
		}
		pt := s.line.PlayingTime()
		if pt <= 0 {
			continue
		}
		dataYears++
		totalWeight += w
		weightedPT += pt * w

		for _, c := range cats {
			v, ok := s.line.Stat(c.Key)
			if !ok {
				if c.Optional {
					hasDetail = false
				}
				continue
			}
			if c.Kind == stats.KindRate {
				sums[c.Key] += v * pt * w
			} else {
				// count/pt re-weighted by pt·w collapses to count·w
				sums[c.Key] += v * w
			}
		}
	}
	if totalWeight == 0 || weightedPT == 0 {
		return Projection{}, false
	}
	avgPT := weightedPT / totalWeight

	p := Projection{
		Player:     player,
		Team:       team,
		Side:       side,
		TargetYear: target,
		DataYears:  dataYears,
		Time:       avgPT,
		Rates:      make(map[string]float64),
		Counts:     make(map[string]float64),
		HasDetail:  hasDetail,
	}

	for _, c := range cats {
		if c.Optional && !hasDetail {
			continue
		}
		lgValue, _ := lg.Value(c)
		value := Regress(sums[c.Key]/weightedPT, weightedPT, lgValue, regression)
		if c.Kind == stats.KindRate {
			p.Rates[c.Key] = value
		} else {
			p.Counts[c.Key] = value * avgPT
		}
	}

	if age, ok := e.births.AgeAt(player, target); ok {
		p.Age, p.AgeKnown = age, true
		adj := e.params.AgeAdjustment(age)
		for key, v := range p.Rates {
			if side == Batter {
				p.Rates[key] = v + adj
			} else {
				p.Rates[key] = v - adj*v/e.params.PitcherAgeScale
			}
		}
	}
	return p, true
}

// Regress shrinks a weighted value toward the league value:
// (v·t + lg·r) / (t + r). With t + r = 0 it returns v.
func Regress(value, weightedTime, leagueValue, regression float64) float64 {
	den := weightedTime + regression
	if den == 0 {
		return value
	}
	return (value*weightedTime + leagueValue*regression) / den
}

func buildBaselines(rows []season, cats []stats.Category) league.Table {
	byYear := make(map[int][]stats.Line)
	for _, r := range rows {
		byYear[r.year] = append(byYear[r.year], r.line)
	}
	t := make(league.Table, len(byYear))
	for y, lines := range byYear {
		t[y] = league.Aggregate(y, lines, cats)
	}
	return t
}
