package marcel

import (
	"github.com/albapepper/npb-projections/internal/league"
	"github.com/albapepper/npb-projections/internal/stats"
)

// Side distinguishes batter from pitcher projections.
type Side int

const (
	Batter Side = iota
	Pitcher
)

func (s Side) String() string {
	if s == Pitcher {
		return "pitcher"
	}
	return "batter"
}

// Projection is one player's projected line for TargetYear.
type Projection struct {
	Player     string
	Team       string
	Side       Side
	TargetYear int

	Age      int
	AgeKnown bool

	// DataYears counts the prior seasons with playing time that fed the
	// projection (1 to 3).
	DataYears int

	// Time is projected PA for batters and IP for pitchers.
	Time float64

	Rates  map[string]float64
	Counts map[string]float64

	// HasDetail is true when every contributing season carried 2B/3B/SF/R.
	HasDetail bool

	Baseline league.Resolution
}

// PlayingTime implements stats.Line.
func (p Projection) PlayingTime() float64 { return p.Time }

// Stat implements stats.Line.
func (p Projection) Stat(key string) (float64, bool) {
	if v, ok := p.Rates[key]; ok {
		return v, true
	}
	if v, ok := p.Counts[key]; ok {
		return v, true
	}
	switch {
	case key == stats.KeyPA && p.Side == Batter:
		return p.Time, true
	case key == stats.KeyIP && p.Side == Pitcher:
		return p.Time, true
	}
	return 0, false
}

// Rate returns a projected rate, zero when absent.
func (p Projection) Rate(key string) float64 { return p.Rates[key] }

// Count returns a projected count, zero when absent.
func (p Projection) Count(key string) float64 { return p.Counts[key] }

func (p Projection) GetYear() int { return p.TargetYear }
