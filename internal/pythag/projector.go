package pythag

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/albapepper/npb-projections/internal/stats"
)

// ErrNoReference means no standings exist in the trailing window.
var ErrNoReference = errors.New("no standings in reference window")

// Params tune team projection.
type Params struct {
	Exponent float64

	// RefYears is the trailing window for the league run baseline.
	RefYears int

	MinPA float64
	MinIP float64

	// DefaultLeagueERA is used when no projected innings exist.
	DefaultLeagueERA float64

	// UncertaintyPerPlayer is the ± wins carried per unprojected roster
	// player. Empirical; override per run.
	UncertaintyPerPlayer float64

	DefaultGames int
	SeasonGames  map[int]int
}

// DefaultParams returns the NPB defaults.
func DefaultParams() Params {
	return Params{
		Exponent:             NPBExponent,
		RefYears:             3,
		MinPA:                100,
		MinIP:                30,
		DefaultLeagueERA:     3.5,
		UncertaintyPerPlayer: 1.5,
		DefaultGames:         143,
		SeasonGames:          map[int]int{2020: 120},
	}
}

// Games returns the schedule length for year.
func (p Params) Games(year int) int {
	if g, ok := p.SeasonGames[year]; ok {
		return g
	}
	return p.DefaultGames
}

// Team is a franchise and its league.
type Team struct {
	Name   string
	League string
}

// Batter is a projected hitter's run contribution.
type Batter struct {
	Player string
	Team   string
	PA     float64
	WRAA   float64
}

// Pitcher is a projected pitcher's run prevention line.
type Pitcher struct {
	Player string
	Team   string
	IP     float64
	ERA    float64
}

// Input is everything one team projection run reads.
type Input struct {
	Target    int
	Teams     []Team
	Standings []stats.TeamSeason
	Batters   []Batter
	Pitchers  []Pitcher

	// Roster maps team to registered players for Target. When set it
	// decides team membership outright.
	Roster map[string][]string

	// Overrides maps player to team when no roster is given; backtests
	// pass the realised Target-year teams here.
	Overrides map[string]string
}

// TeamProjection is one row of projected standings.
type TeamProjection struct {
	Year   int
	Team   string
	League string
	Rank   int
	G      int

	RSRaw float64
	RARaw float64
	RS    float64
	RA    float64

	WinPct float64
	Wins   float64
	Losses float64

	Batters  int
	Pitchers int

	// Unprojected counts roster players with no qualifying projection:
	// either none at all, or one below MinPA / MinIP. Both are treated as
	// league average and add UncertaintyPerPlayer.
	Unprojected int
	Uncertainty float64
}

func (t TeamProjection) GetYear() int { return t.Year }

// Projector turns player projections into team win totals.
type Projector struct {
	params Params
	logger *slog.Logger
}

// NewProjector returns a projector.
func NewProjector(params Params, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{params: params, logger: logger}
}

// Params returns the projector's parameters.
func (p *Projector) Params() Params { return p.params }

// LeagueRuns is the trailing league-average runs scored and allowed per
// team: the mean over years of each year's team mean.
func (p *Projector) LeagueRuns(standings []stats.TeamSeason, target int) (rs, ra float64, err error) {
	type acc struct{ rs, ra, n float64 }
	byYear := make(map[int]*acc)
	for _, s := range standings {
		if s.Year < target-p.params.RefYears || s.Year >= target {
			continue
		}
		a := byYear[s.Year]
		if a == nil {
			a = &acc{}
			byYear[s.Year] = a
		}
		a.rs += s.RS
		a.ra += s.RA
		a.n++
	}
	if len(byYear) == 0 {
		return 0, 0, fmt.Errorf("league runs for %d: %w", target, ErrNoReference)
	}
	for _, a := range byYear {
		rs += a.rs / a.n
		ra += a.ra / a.n
	}
	n := float64(len(byYear))
	return rs / n, ra / n, nil
}

// LeagueERA is the innings-weighted mean projected ERA.
func (p *Projector) LeagueERA(pitchers []Pitcher) float64 {
	var er, ip float64
	for _, pt := range pitchers {
		er += pt.ERA * pt.IP
		ip += pt.IP
	}
	if ip <= 0 {
		return p.params.DefaultLeagueERA
	}
	return er / ip
}

// Project returns projected standings for in.Target, ranked within league.
func (p *Projector) Project(in Input) ([]TeamProjection, error) {
	if len(in.Teams) == 0 {
		return nil, errors.New("project standings: no teams")
	}
	lgRS, lgRA, err := p.LeagueRuns(in.Standings, in.Target)
	if err != nil {
		return nil, err
	}
	lgERA := p.LeagueERA(in.Pitchers)

	assign := p.assigner(in)
	rows := make(map[string]*TeamProjection, len(in.Teams))
	out := make([]TeamProjection, len(in.Teams))
	for i, t := range in.Teams {
		out[i] = TeamProjection{Year: in.Target, Team: t.Name, League: t.League, RSRaw: lgRS, RARaw: lgRA}
		rows[t.Name] = &out[i]
	}

	projected := make(map[string]bool)
	for _, b := range in.Batters {
		if b.PA < p.params.MinPA {
			continue
		}
		row := rows[assign(b.Player, b.Team)]
		if row == nil {
			continue
		}
		row.RSRaw += b.WRAA
		row.Batters++
		projected[b.Player] = true
	}
	for _, pt := range in.Pitchers {
		if pt.IP < p.params.MinIP {
			continue
		}
		row := rows[assign(pt.Player, pt.Team)]
		if row == nil {
			continue
		}
		row.RARaw += (pt.ERA - lgERA) * pt.IP / 9
		row.Pitchers++
		projected[pt.Player] = true
	}

	for team, players := range in.Roster {
		row := rows[team]
		if row == nil {
			continue
		}
		for _, name := range players {
			if !projected[name] {
				row.Unprojected++
			}
		}
	}

	var rsSum, raSum float64
	for _, r := range out {
		rsSum += r.RSRaw
		raSum += r.RARaw
	}
	n := float64(len(out))
	rsScale, raScale := scale(lgRS, rsSum/n), scale(lgRA, raSum/n)

	g := p.params.Games(in.Target)
	for i := range out {
		r := &out[i]
		r.G = g
		r.RS = r.RSRaw * rsScale
		r.RA = r.RARaw * raScale
		r.WinPct = WinPct(r.RS, r.RA, p.params.Exponent)
		r.Wins = r.WinPct * float64(g)
		r.Losses = float64(g) - r.Wins
		r.Uncertainty = float64(r.Unprojected) * p.params.UncertaintyPerPlayer
	}
	rank(out)

	p.logger.Info("team projection complete",
		"target", in.Target, "teams", len(out),
		"lg_rs", lgRS, "lg_ra", lgRA, "lg_era", lgERA, "roster", in.Roster != nil)
	return out, nil
}

// assigner resolves a player's team: roster, then override, then the
// projection's own team.
func (p *Projector) assigner(in Input) func(player, team string) string {
	rostered := make(map[string]string)
	for t, players := range in.Roster {
		for _, name := range players {
			rostered[name] = t
		}
	}
	return func(player, team string) string {
		if in.Roster != nil {
			return rostered[player]
		}
		if t, ok := in.Overrides[player]; ok {
			return t
		}
		return team
	}
}

func scale(target, mean float64) float64 {
	if mean == 0 {
		return 1
	}
	return target / mean
}

// rank orders rows by league then wins and numbers them within league.
func rank(rows []TeamProjection) {
	slices.SortStableFunc(rows, func(a, b TeamProjection) int {
		if c := cmp.Compare(a.League, b.League); c != 0 {
			return c
		}
		return cmp.Compare(b.Wins, a.Wins)
	})
	pos := make(map[string]int)
	for i := range rows {
		pos[rows[i].League]++
		rows[i].Rank = pos[rows[i].League]
	}
}
