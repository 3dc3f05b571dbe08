// Package pythag estimates win percentage from runs scored and allowed, and
// turns player projections into projected team standings.
package pythag

import (
	"math"
	"slices"

	"github.com/albapepper/npb-projections/internal/stats"
)

// Exponents fitted per league.
const (
	NPBExponent = 1.72
	MLBExponent = 1.83
)

// WinPct is RS^k / (RS^k + RA^k). RS = RA = 0 gives exactly 0.5 and RA = 0
// gives 1.0. Negative inputs are clamped to zero.
func WinPct(rs, ra, k float64) float64 {
	rs, ra = math.Max(rs, 0), math.Max(ra, 0)
	switch {
	case rs == 0 && ra == 0:
		return 0.5
	case ra == 0:
		return 1.0
	}
	num := math.Pow(rs, k)
	return num / (num + math.Pow(ra, k))
}

// --------------------------------------------------------------------------
// Evaluation of realised seasons
// --------------------------------------------------------------------------

// Record compares one team-season's realised record to its expectation.
type Record struct {
	Team   string
	League string
	Year   int
	G      int
	W      int
	L      int
	D      int
	RS     float64
	RA     float64

	Exponent float64
	WinPct   float64
	PythPct  float64

	// PythWins is PythPct over decisions (W+L); ties are excluded.
	PythWins float64

	// Gap is realised minus expected wins; positive means the team won
	// more than its run differential implies.
	Gap float64
}

func (r Record) GetYear() int { return r.Year }

// Records evaluates every team-season with exponent k.
func Records(seasons []stats.TeamSeason, k float64) []Record {
	out := make([]Record, 0, len(seasons))
	for _, s := range seasons {
		p := WinPct(s.RS, s.RA, k)
		expected := p * float64(s.Decisions())
		out = append(out, Record{
			Team:     s.Team,
			League:   s.League,
			Year:     s.Year,
			G:        s.G,
			W:        s.W,
			L:        s.L,
			D:        s.D,
			RS:       s.RS,
			RA:       s.RA,
			Exponent: k,
			WinPct:   s.WinPct(),
			PythPct:  p,
			PythWins: expected,
			Gap:      float64(s.W) - expected,
		})
	}
	return out
}

// Accuracy summarises how well expected wins track realised wins.
type Accuracy struct {
	Exponent float64
	Year     int // 0 for all years
	N        int
	MAE      float64
	RMSE     float64
}

// Evaluate computes MAE and RMSE in wins over records.
func Evaluate(records []Record) Accuracy {
	var a Accuracy
	var abs, sq float64
	for _, r := range records {
		a.Exponent = r.Exponent
		abs += math.Abs(r.Gap)
		sq += r.Gap * r.Gap
		a.N++
	}
	if a.N > 0 {
		a.MAE = abs / float64(a.N)
		a.RMSE = math.Sqrt(sq / float64(a.N))
	}
	return a
}

// Compare evaluates each exponent overall and per year. The overall row
// for each exponent comes first, followed by its years ascending.
func Compare(seasons []stats.TeamSeason, exponents ...float64) []Accuracy {
	var out []Accuracy
	years := stats.Years(seasons)
	for _, k := range exponents {
		records := Records(seasons, k)
		overall := Evaluate(records)
		overall.Exponent = k
		out = append(out, overall)
		for _, y := range years {
			yr := Evaluate(slices.DeleteFunc(slices.Clone(records), func(r Record) bool { return r.Year != y }))
			yr.Exponent, yr.Year = k, y
			out = append(out, yr)
		}
	}
	return out
}
