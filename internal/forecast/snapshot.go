package forecast

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/saber"
	"github.com/albapepper/npb-projections/internal/stats"
	"github.com/albapepper/npb-projections/internal/table"
)

// Snapshot is every output for one target year. It is never mutated after
// Build returns.
type Snapshot struct {
	Target  int
	BuiltAt time.Time

	Batters      []marcel.Projection
	Pitchers     []marcel.Projection
	BatterValues []saber.Value
	Fit          *saber.Fit
	Environment  saber.Environment

	Environments []saber.Environment
	SeasonValues []saber.SeasonValue
	Correlation  *saber.Correlation

	Records   []pythag.Record
	Accuracy  []pythag.Accuracy
	Standings []pythag.TeamProjection
}

// Build runs the full pipeline for target and the season-level tables over
// all loaded history. Without reference standings the snapshot is returned
// with nil Standings.
func Build(p *Pipeline, ds *table.Dataset, target int, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	run, err := p.Project(ds, target, false)
	switch {
	case errors.Is(err, pythag.ErrNoReference):
		logger.Warn("projected standings skipped", "target", target, "reason", err)
	case err != nil:
		return nil, err
	}

	s := &Snapshot{
		Target:       target,
		BuiltAt:      time.Now().UTC(),
		Batters:      run.Batters,
		Pitchers:     run.Pitchers,
		BatterValues: run.Values,
		Fit:          run.Fit,
		Environment:  run.Estimator.Environment(),
		Standings:    run.Standings,
	}

	s.Environments, s.SeasonValues = saber.Seasons(ds.Batters)
	for _, env := range s.Environments {
		logger.Info("league environment",
			"year", env.Year,
			"lg_woba", fmt.Sprintf("%.3f", env.LeagueWOBA),
			"lg_obp", fmt.Sprintf("%.3f", env.LeagueOBP),
			"scale", fmt.Sprintf("%.3f", env.Scale),
			"r_pa", fmt.Sprintf("%.4f", env.RunsPerPA))
	}
	corr, err := saber.Validate(s.SeasonValues, p.model.Value.ValidationMinPA)
	switch {
	case errors.Is(err, saber.ErrTooFewSamples):
		logger.Info("wOBA validation skipped", "qualified", corr.N)
	case err != nil:
		logger.Warn("wOBA validation failed", "error", err)
	default:
		s.Correlation = &corr
		logger.Info("wOBA validation", "n", corr.N, "corr_slg", corr.SLG, "corr_obp", corr.OBP)
	}

	s.Records = pythag.Records(ds.Standings, p.model.Pythag.Exponent)
	s.Accuracy = pythag.Compare(ds.Standings, pythag.NPBExponent, pythag.MLBExponent)
	return s, nil
}

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

// ValuedProjection pairs a batter projection with its value estimate.
type ValuedProjection struct {
	marcel.Projection
	Value saber.Value
}

// SearchBatters returns batters whose name contains q.
func (s *Snapshot) SearchBatters(q string) []ValuedProjection {
	var out []ValuedProjection
	for i, b := range s.Batters {
		if strings.Contains(b.Player, q) {
			out = append(out, ValuedProjection{Projection: b, Value: s.BatterValues[i]})
		}
	}
	return out
}

// SearchPitchers returns pitchers whose name contains q.
func (s *Snapshot) SearchPitchers(q string) []marcel.Projection {
	var out []marcel.Projection
	for _, p := range s.Pitchers {
		if strings.Contains(p.Player, q) {
			out = append(out, p)
		}
	}
	return out
}

// PlayerValues returns every season value line whose name contains q,
// newest first.
func (s *Snapshot) PlayerValues(q string) []saber.SeasonValue {
	var out []saber.SeasonValue
	for _, v := range s.SeasonValues {
		if strings.Contains(v.Player, q) {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, func(a, b saber.SeasonValue) int { return cmp.Compare(b.Year, a.Year) })
	return out
}

// TeamRecords returns a team's Pythagorean records, oldest first.
func (s *Snapshot) TeamRecords(team string) []pythag.Record {
	var out []pythag.Record
	for _, r := range s.Records {
		if r.Team == team {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b pythag.Record) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// YearRecords returns one season's records ordered by league then wins.
func (s *Snapshot) YearRecords(year int) []pythag.Record {
	var out []pythag.Record
	for _, r := range s.Records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b pythag.Record) int {
		if c := cmp.Compare(a.League, b.League); c != 0 {
			return c
		}
		return cmp.Compare(b.W, a.W)
	})
	return out
}

// Rankable stat keys for top lists.
var (
	BatterSortKeys  = []string{stats.KeyOPS, stats.KeyAVG, stats.KeyOBP, stats.KeySLG, stats.KeyHR, stats.KeyRBI, stats.KeySB, "wOBA", "wRC+"}
	PitcherSortKeys = []string{stats.KeyERA, stats.KeyWHIP, stats.KeyW, stats.KeySO, stats.KeySV}
)

// ErrUnknownSort is returned for a sort key outside the allowed set.
var ErrUnknownSort = errors.New("unknown sort key")

// TopBatters ranks batters with projected PA ≥ minPA by key, descending.
func (s *Snapshot) TopBatters(key string, minPA float64, limit int) ([]ValuedProjection, error) {
	if !slices.Contains(BatterSortKeys, key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSort, key)
	}
	score := func(v ValuedProjection) float64 {
		switch key {
		case "wOBA":
			return v.Value.WOBA
		case "wRC+":
			return v.Value.WRCPlus
		}
		x, _ := v.Stat(key)
		return x
	}
	var out []ValuedProjection
	for i, b := range s.Batters {
		if b.Time < minPA {
			continue
		}
		if (key == "wOBA" || key == "wRC+") && s.BatterValues[i].Source == saber.Unavailable {
			continue
		}
		out = append(out, ValuedProjection{Projection: b, Value: s.BatterValues[i]})
	}
	slices.SortStableFunc(out, func(a, b ValuedProjection) int { return cmp.Compare(score(b), score(a)) })
	return truncate(out, limit), nil
}

// TopPitchers ranks pitchers with projected IP ≥ minIP by key. ERA and WHIP
// rank ascending, counts descending.
func (s *Snapshot) TopPitchers(key string, minIP float64, limit int) ([]marcel.Projection, error) {
	if !slices.Contains(PitcherSortKeys, key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSort, key)
	}
	ascending := key == stats.KeyERA || key == stats.KeyWHIP
	var out []marcel.Projection
	for _, p := range s.Pitchers {
		if p.Time >= minIP {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b marcel.Projection) int {
		x, _ := a.Stat(key)
		y, _ := b.Stat(key)
		if ascending {
			return cmp.Compare(x, y)
		}
		return cmp.Compare(y, x)
	})
	return truncate(out, limit), nil
}

func truncate[T any](xs []T, limit int) []T {
	if limit > 0 && len(xs) > limit {
		return xs[:limit]
	}
	return xs
}

// --------------------------------------------------------------------------
// Holder
// --------------------------------------------------------------------------

// Holder publishes the current snapshot to concurrent readers. Writers
// replace the whole snapshot; readers never see a partial one.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, nil before the first Store.
func (h *Holder) Load() *Snapshot { return h.current.Load() }

// Store replaces the current snapshot.
func (h *Holder) Store(s *Snapshot) { h.current.Store(s) }
