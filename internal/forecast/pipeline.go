// Package forecast composes the projection stages for one target year and
// packages the results as immutable snapshots.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/albapepper/npb-projections/internal/backtest"
	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/saber"
	"github.com/albapepper/npb-projections/internal/stats"
	"github.com/albapepper/npb-projections/internal/table"
)

// MarcelParams converts the configured model into engine params.
func MarcelParams(m config.MarcelModel) marcel.Params {
	p := marcel.DefaultParams()
	copy(p.Weights[:], m.Weights)
	p.RegressionPA = m.RegressionPA
	p.RegressionIP = m.RegressionIP
	p.PeakAge = m.PeakAge
	p.AgeFactor = m.AgeFactor
	p.PitcherAgeScale = m.PitcherAgeScale
	return p
}

// PythagParams converts the configured model into projector params.
func PythagParams(m config.PythagModel) pythag.Params {
	return pythag.Params{
		Exponent:             m.Exponent,
		RefYears:             m.RefYears,
		MinPA:                m.MinPA,
		MinIP:                m.MinIP,
		DefaultLeagueERA:     m.DefaultLeagueERA,
		UncertaintyPerPlayer: m.UncertaintyPerPlayer,
		DefaultGames:         m.DefaultGames,
		SeasonGames:          m.SeasonGames,
	}
}

// Teams converts the registry into projector teams.
func Teams(reg []config.TeamConfig) []pythag.Team {
	out := make([]pythag.Team, len(reg))
	for i, t := range reg {
		out[i] = pythag.Team{Name: t.Name, League: t.League}
	}
	return out
}

// Pipeline wires the stages together. It holds no per-run state, so one
// pipeline can serve concurrent target years.
type Pipeline struct {
	model     config.Model
	teams     []pythag.Team
	engine    *marcel.Engine
	projector *pythag.Projector
	logger    *slog.Logger
}

// NewPipeline validates the model and builds the stages.
func NewPipeline(model config.Model, births stats.Birthdays, teams []config.TeamConfig, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := marcel.NewEngine(MarcelParams(model.Marcel), births, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		model:     model,
		teams:     Teams(teams),
		engine:    engine,
		projector: pythag.NewProjector(PythagParams(model.Pythag), logger),
		logger:    logger,
	}, nil
}

// Engine exposes the projection engine.
func (p *Pipeline) Engine() *marcel.Engine { return p.engine }

// Run is one target year's pass through every stage.
type Run struct {
	Target    int
	Batters   []marcel.Projection
	Pitchers  []marcel.Projection
	Values    []saber.Value
	Estimator saber.Estimator
	Fit       *saber.Fit
	Standings []pythag.TeamProjection
}

// Project runs every stage for target using only data before it. With
// realised set, players are assigned to the teams they actually played for
// in target, which only makes sense for past seasons.
func (p *Pipeline) Project(ds *table.Dataset, target int, realised bool) (Run, error) {
	run := Run{
		Target:   target,
		Batters:  p.engine.ProjectBatters(ds.Batters, target),
		Pitchers: p.engine.ProjectPitchers(ds.Pitchers, target),
	}

	run.Estimator, run.Fit = p.estimator(ds.Batters, target)
	run.Values = make([]saber.Value, len(run.Batters))
	for i, b := range run.Batters {
		run.Values[i] = run.Estimator.Evaluate(b)
	}

	in := pythag.Input{
		Target:    target,
		Teams:     p.teams,
		Standings: ds.Standings,
	}
	for i, b := range run.Batters {
		if run.Values[i].Source == saber.Unavailable {
			continue
		}
		in.Batters = append(in.Batters, pythag.Batter{Player: b.Player, Team: b.Team, PA: b.Time, WRAA: run.Values[i].WRAA})
	}
	for _, pt := range run.Pitchers {
		in.Pitchers = append(in.Pitchers, pythag.Pitcher{Player: pt.Player, Team: pt.Team, IP: pt.Time, ERA: pt.Rate(stats.KeyERA)})
	}
	if ds.Roster.Has(target) {
		in.Roster = ds.Roster.Teams(target)
	}
	if realised {
		in.Overrides = realisedTeams(ds, target)
	}

	standings, err := p.projector.Project(in)
	if err != nil {
		return run, fmt.Errorf("standings %d: %w", target, err)
	}
	run.Standings = standings

	p.logger.Info("forecast run complete",
		"target", target,
		"batters", len(run.Batters),
		"pitchers", len(run.Pitchers),
		"value_env", run.Estimator.Environment().Year,
		"fallback_fit", run.Fit != nil)
	return run, nil
}

// estimator calibrates on the latest detailed season before target and
// fits the OBP/SLG fallback over the reference window.
func (p *Pipeline) estimator(rows []stats.BatterSeason, target int) (saber.Estimator, *saber.Fit) {
	prior := make([]stats.BatterSeason, 0, len(rows))
	for _, r := range rows {
		if r.Year < target {
			prior = append(prior, r)
		}
	}
	envs, values := saber.Seasons(prior)
	if len(envs) == 0 {
		p.logger.Warn("no detailed seasons before target, batter value unavailable", "target", target)
		return saber.NewEstimator(saber.External(0, 1, saber.DefaultRunsPerPA), nil), nil
	}
	env := envs[len(envs)-1]

	window := values[:0:0]
	for _, v := range values {
		if v.Year >= target-p.model.Pythag.RefYears {
			window = append(window, v)
		}
	}
	fit, err := saber.FitFallback(window, p.model.Value.FallbackMinPA)
	if err != nil {
		p.logger.Warn("wOBA fallback fit unavailable", "target", target, "error", err)
		return saber.NewEstimator(env, nil), nil
	}
	return saber.NewEstimator(env, &fit), &fit
}

// realisedTeams maps each player to the last team listed for them in
// target's batting and pitching tables.
func realisedTeams(ds *table.Dataset, target int) map[string]string {
	out := make(map[string]string)
	for _, b := range ds.Batters {
		if b.Year == target {
			out[b.Player] = b.Team
		}
	}
	for _, pt := range ds.Pitchers {
		if pt.Year == target {
			out[pt.Player] = pt.Team
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Backtests
// --------------------------------------------------------------------------

// Backtest is the result of replaying past seasons.
type Backtest struct {
	Players []backtest.PlayerReport
	Teams   []backtest.TeamReport
}

// Backtest replays every year in years in parallel. Each year reads the
// shared dataset and writes only its own result.
func (p *Pipeline) Backtest(ctx context.Context, ds *table.Dataset, years []int) (Backtest, error) {
	q := backtest.Qualification{MinPA: p.model.Backtest.QualifiedPA, MinIP: p.model.Backtest.QualifiedIP}

	type yearResult struct {
		players backtest.PlayerReport
		teams   *backtest.TeamReport
	}
	results, err := backtest.RunYears(ctx, years, p.model.Backtest.Workers, func(_ context.Context, year int) (yearResult, error) {
		res := yearResult{players: backtest.Players(p.engine, ds.Batters, ds.Pitchers, year, q)}
		run, err := p.Project(ds, year, true)
		switch {
		case errors.Is(err, pythag.ErrNoReference):
			p.logger.Info("team backtest skipped", "year", year, "reason", err)
		case err != nil:
			return res, err
		default:
			tr := backtest.Teams(run.Standings, ds.Standings, year)
			res.teams = &tr
		}
		return res, nil
	})
	if err != nil {
		return Backtest{}, err
	}

	var out Backtest
	for _, r := range results {
		out.Players = append(out.Players, r.players)
		if r.teams != nil {
			out.Teams = append(out.Teams, *r.teams)
		}
	}
	return out, nil
}
