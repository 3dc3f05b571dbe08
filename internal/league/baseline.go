// Package league aggregates a season's player rows into the league-wide
// baselines that projections regress toward and value metrics are scaled by.
package league

import (
	"github.com/albapepper/npb-projections/internal/stats"
)

// Baseline is one season's playing-time-weighted league environment.
//
// A zero Weight means the season had no playing time; every value is then
// 0.0 and callers must treat the baseline as "no data".
type Baseline struct {
	Year   int
	Weight float64

	rates      map[string]float64
	countRates map[string]float64
	totals     map[string]float64
	weights    map[string]float64
}

// Aggregate computes the baseline for one season. Rate categories are
// weighted means sum(rate*w)/sum(w); count categories become per-unit rates
// sum(count)/sum(w). Optional categories only use the lines that carry them
// and are absent from the result when no line does.
func Aggregate(year int, lines []stats.Line, cats []stats.Category) Baseline {
	b := Baseline{
		Year:       year,
		rates:      make(map[string]float64),
		countRates: make(map[string]float64),
		totals:     make(map[string]float64),
		weights:    make(map[string]float64),
	}

	rateSums := make(map[string]float64)
	for _, line := range lines {
		w := line.PlayingTime()
		if w < 0 {
			w = 0
		}
		b.Weight += w
		for _, c := range cats {
			v, ok := line.Stat(c.Key)
			if !ok {
				continue
			}
			b.weights[c.Key] += w
			if c.Kind == stats.KindRate {
				rateSums[c.Key] += v * w
			} else {
				b.totals[c.Key] += v
			}
		}
	}

	for _, c := range cats {
		w, seen := b.weights[c.Key]
		if !seen && c.Optional {
			continue
		}
		switch c.Kind {
		case stats.KindRate:
			b.rates[c.Key] = safeDiv(rateSums[c.Key], w)
		default:
			b.countRates[c.Key] = safeDiv(b.totals[c.Key], w)
		}
	}
	return b
}

// Empty reports whether the season carried no playing time.
func (b Baseline) Empty() bool { return b.Weight == 0 }

// Rate returns the league mean of a rate category.
func (b Baseline) Rate(key string) (float64, bool) {
	v, ok := b.rates[key]
	return v, ok
}

// CountRate returns a count category per unit of playing time.
func (b Baseline) CountRate(key string) (float64, bool) {
	v, ok := b.countRates[key]
	return v, ok
}

// Total returns the league sum of a count category.
func (b Baseline) Total(key string) float64 {
	return b.totals[key]
}

// Value returns the rate for rate categories and the per-unit rate for
// count categories.
func (b Baseline) Value(c stats.Category) (float64, bool) {
	if c.Kind == stats.KindRate {
		return b.Rate(c.Key)
	}
	return b.CountRate(c.Key)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
