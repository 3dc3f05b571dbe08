// Package saber computes linear-weights batting value: wOBA, wRAA and wRC+,
// calibrated per league-season so the league's aggregate wOBA equals its OBP.
package saber

import (
	"github.com/albapepper/npb-projections/internal/league"
	"github.com/albapepper/npb-projections/internal/stats"
)

// EventWeights are run values per offensive event.
type EventWeights struct {
	BB      float64
	HBP     float64
	Single  float64
	Double  float64
	Triple  float64
	HomeRun float64
}

// RawWeights are the fixed relative event values. Only their ratios are
// meaningful; Calibrate sets the absolute scale per season.
var RawWeights = EventWeights{
	BB:      0.69,
	HBP:     0.72,
	Single:  0.88,
	Double:  1.27,
	Triple:  1.62,
	HomeRun: 2.10,
}

// Scaled multiplies every weight by s.
func (w EventWeights) Scaled(s float64) EventWeights {
	return EventWeights{
		BB:      w.BB * s,
		HBP:     w.HBP * s,
		Single:  w.Single * s,
		Double:  w.Double * s,
		Triple:  w.Triple * s,
		HomeRun: w.HomeRun * s,
	}
}

// Events are the counts wOBA is built from. Floats so projected lines work.
type Events struct {
	PA      float64
	AB      float64
	BB      float64
	HBP     float64
	SF      float64
	Single  float64
	Double  float64
	Triple  float64
	HomeRun float64
}

// Denominator is AB + BB + SF + HBP.
func (e Events) Denominator() float64 { return e.AB + e.BB + e.SF + e.HBP }

func (e Events) value(w EventWeights) float64 {
	return w.BB*e.BB + w.HBP*e.HBP + w.Single*e.Single +
		w.Double*e.Double + w.Triple*e.Triple + w.HomeRun*e.HomeRun
}

// EventsOf extracts events from a line. ok is false when the line lacks the
// extra-base-hit breakdown.
func EventsOf(line stats.Line) (Events, bool) {
	doubles, ok2 := line.Stat(stats.Key2B)
	triples, ok3 := line.Stat(stats.Key3B)
	sf, okSF := line.Stat(stats.KeySF)
	if !ok2 || !ok3 || !okSF {
		return Events{}, false
	}
	h, _ := line.Stat(stats.KeyH)
	hr, _ := line.Stat(stats.KeyHR)
	ab, _ := line.Stat(stats.KeyAB)
	bb, _ := line.Stat(stats.KeyBB)
	hbp, _ := line.Stat(stats.KeyHBP)
	pa, _ := line.Stat(stats.KeyPA)
	return Events{
		PA:      pa,
		AB:      ab,
		BB:      bb,
		HBP:     hbp,
		SF:      sf,
		Single:  h - doubles - triples - hr,
		Double:  doubles,
		Triple:  triples,
		HomeRun: hr,
	}, true
}

// --------------------------------------------------------------------------
// Environment
// --------------------------------------------------------------------------

// DefaultRunsPerPA is used when a season has no plate appearances or runs.
const DefaultRunsPerPA = 0.1

// Environment is one league-season's calibrated value context.
type Environment struct {
	Year       int
	Weights    EventWeights
	Scale      float64
	LeagueWOBA float64
	LeagueOBP  float64
	RawWOBA    float64
	RunsPerPA  float64
	Rows       int
}

// Calibrate builds the environment for one season from rows that carry
// detail. Rows without detail are ignored. The league wOBA is the
// denominator-weighted aggregate, which equals LeagueOBP by construction.
func Calibrate(year int, rows []stats.BatterSeason) Environment {
	var lines []stats.Line
	for _, r := range rows {
		if r.Year == year && r.HasDetail() {
			lines = append(lines, r)
		}
	}
	lg := league.Aggregate(year, lines, stats.BatterCategories())

	total := Events{
		PA:      lg.Weight,
		AB:      lg.Total(stats.KeyAB),
		BB:      lg.Total(stats.KeyBB),
		HBP:     lg.Total(stats.KeyHBP),
		SF:      lg.Total(stats.KeySF),
		Double:  lg.Total(stats.Key2B),
		Triple:  lg.Total(stats.Key3B),
		HomeRun: lg.Total(stats.KeyHR),
	}
	total.Single = lg.Total(stats.KeyH) - total.Double - total.Triple - total.HomeRun

	env := Environment{Year: year, Rows: len(lines), Scale: 1.0}
	den := total.Denominator()
	if den > 0 {
		env.LeagueOBP = (lg.Total(stats.KeyH) + total.BB + total.HBP) / den
		env.RawWOBA = total.value(RawWeights) / den
	}
	if env.RawWOBA > 0 {
		env.Scale = env.LeagueOBP / env.RawWOBA
	}
	env.Weights = RawWeights.Scaled(env.Scale)
	env.LeagueWOBA = env.RawWOBA * env.Scale

	env.RunsPerPA = DefaultRunsPerPA
	if total.PA > 0 {
		if rpa := lg.Total(stats.KeyR) / total.PA; rpa > 0 {
			env.RunsPerPA = rpa
		}
	}
	return env
}

// External builds an environment from externally supplied constants.
func External(leagueWOBA, scale, runsPerPA float64) Environment {
	if scale <= 0 {
		scale = 1.0
	}
	if runsPerPA <= 0 {
		runsPerPA = DefaultRunsPerPA
	}
	return Environment{
		Weights:    RawWeights.Scaled(scale),
		Scale:      scale,
		LeagueWOBA: leagueWOBA,
		RunsPerPA:  runsPerPA,
	}
}

// WOBA is the scaled weighted on-base average. ok is false when the
// denominator is zero; the value is then undefined, not zero.
func (env Environment) WOBA(e Events) (float64, bool) {
	den := e.Denominator()
	if den <= 0 {
		return 0, false
	}
	return e.value(env.Weights) / den, true
}

// WRAA is runs above average: (wOBA − lgwOBA) / scale · PA.
func (env Environment) WRAA(woba, pa float64) float64 {
	return (woba - env.LeagueWOBA) / env.Scale * pa
}

// WRCPlus is the league-normalised index where 100 is average.
func (env Environment) WRCPlus(woba float64) float64 {
	perPA := (woba - env.LeagueWOBA) / env.Scale
	return (perPA + env.RunsPerPA) / env.RunsPerPA * 100
}
