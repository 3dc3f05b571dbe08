// Package backtest re-runs projections for past seasons using only earlier
// data and scores them against what actually happened.
package backtest

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/stats"
)

// Qualification is the minimum playing time, on both the projected and the
// realised side, for a player to be scored.
type Qualification struct {
	MinPA float64
	MinIP float64
}

// DefaultQualification matches the usual full-time thresholds.
func DefaultQualification() Qualification {
	return Qualification{MinPA: 400, MinIP: 100}
}

// Metric is the error of one category over the joined players.
type Metric struct {
	Key  string
	N    int
	MAE  float64
	RMSE float64
	// Bias is mean(projected − actual).
	Bias float64
}

// Compare scores projected against actual lines on the inner join of
// player keys for every category key.
func Compare(actual, projected map[string]stats.Line, keys []string) []Metric {
	out := make([]Metric, 0, len(keys))
	for _, key := range keys {
		m := Metric{Key: key}
		var diffs []float64
		for player, a := range actual {
			p, ok := projected[player]
			if !ok {
				continue
			}
			av, okA := a.Stat(key)
			pv, okP := p.Stat(key)
			if !okA || !okP {
				continue
			}
			diffs = append(diffs, pv-av)
		}
		m.N = len(diffs)
		m.MAE, m.RMSE, m.Bias = errorStats(diffs)
		out = append(out, m)
	}
	return out
}

// --------------------------------------------------------------------------
// Players
// --------------------------------------------------------------------------

// PlayerReport is one target year's player backtest.
type PlayerReport struct {
	Target   int
	Batters  []Metric
	Pitchers []Metric
}

// Summary returns a one-line description of the report.
func (r PlayerReport) Summary() string {
	s := fmt.Sprintf("target=%d", r.Target)
	for _, m := range append(append([]Metric(nil), r.Batters...), r.Pitchers...) {
		s += fmt.Sprintf(" %s(n=%d mae=%.3f rmse=%.3f)", m.Key, m.N, m.MAE, m.RMSE)
	}
	return s
}

// Players projects target from rows strictly before it and compares the
// qualified projections to qualified realised seasons.
func Players(e *marcel.Engine, batters []stats.BatterSeason, pitchers []stats.PitcherSeason, target int, q Qualification) PlayerReport {
	prior := func(y int) bool { return y < target }

	var pastB, actualB []stats.BatterSeason
	for _, b := range batters {
		switch {
		case prior(b.Year):
			pastB = append(pastB, b)
		case b.Year == target:
			actualB = append(actualB, b)
		}
	}
	var pastP, actualP []stats.PitcherSeason
	for _, p := range pitchers {
		switch {
		case prior(p.Year):
			pastP = append(pastP, p)
		case p.Year == target:
			actualP = append(actualP, p)
		}
	}

	report := PlayerReport{Target: target}

	projB := qualifiedProjections(e.ProjectBatters(pastB, target), q.MinPA)
	realB := make(map[string]stats.Line)
	for _, b := range actualB {
		if float64(b.PA) >= q.MinPA {
			realB[b.Player] = b
		}
	}
	report.Batters = Compare(realB, projB, keys(stats.Rates(stats.BatterCategories())))

	projP := qualifiedProjections(e.ProjectPitchers(pastP, target), q.MinIP)
	realP := make(map[string]stats.Line)
	for _, p := range actualP {
		if p.IP >= q.MinIP {
			realP[p.Player] = p
		}
	}
	report.Pitchers = Compare(realP, projP, keys(stats.Rates(stats.PitcherCategories())))
	return report
}

func qualifiedProjections(ps []marcel.Projection, floor float64) map[string]stats.Line {
	out := make(map[string]stats.Line, len(ps))
	for _, p := range ps {
		if p.Time >= floor {
			out[p.Player] = p
		}
	}
	return out
}

func keys(cats []stats.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Key
	}
	return out
}

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// TeamResult compares one team's projected wins to its realised wins.
type TeamResult struct {
	Year          int
	Team          string
	League        string
	ProjectedWins float64
	ActualWins    int
	Error         float64
}

// TeamReport is one target year's standings backtest.
type TeamReport struct {
	Target int
	Rows   []TeamResult
	N      int
	MAE    float64
	RMSE   float64
}

// Teams joins projected standings with realised standings for the same
// year on team name.
func Teams(projected []pythag.TeamProjection, actual []stats.TeamSeason, target int) TeamReport {
	wins := make(map[string]int)
	for _, s := range actual {
		if s.Year == target {
			wins[s.Team] = s.W
		}
	}
	r := TeamReport{Target: target}
	var diffs []float64
	for _, p := range projected {
		w, ok := wins[p.Team]
		if !ok || p.Year != target {
			continue
		}
		d := p.Wins - float64(w)
		r.Rows = append(r.Rows, TeamResult{
			Year: target, Team: p.Team, League: p.League,
			ProjectedWins: p.Wins, ActualWins: w, Error: d,
		})
		diffs = append(diffs, d)
	}
	r.N = len(r.Rows)
	r.MAE, r.RMSE, _ = errorStats(diffs)
	return r
}

// errorStats returns the mean absolute, root mean square and mean signed
// values of diffs, all zero when diffs is empty.
func errorStats(diffs []float64) (mae, rmse, bias float64) {
	if len(diffs) == 0 {
		return 0, 0, 0
	}
	n := float64(len(diffs))
	return floats.Norm(diffs, 1) / n, floats.Norm(diffs, 2) / math.Sqrt(n), stat.Mean(diffs, nil)
}

// --------------------------------------------------------------------------
// Parallel years
// --------------------------------------------------------------------------

// RunYears calls fn for every year with at most workers in flight and
// returns results in the order of years. fn must treat its inputs as read
// only. The first error cancels the remaining years.
func RunYears[T any](ctx context.Context, years []int, workers int, fn func(ctx context.Context, year int) (T, error)) ([]T, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]T, len(years))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, y := range years {
		i, y := i, y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := fn(ctx, y)
			if err != nil {
				return fmt.Errorf("backtest %d: %w", y, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
