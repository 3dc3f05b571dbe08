package saber

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/albapepper/npb-projections/internal/stats"
)

// SeasonValue is one player-season's value line.
type SeasonValue struct {
	Player string
	Team   string
	Year   int
	PA     int
	AVG    float64
	OBP    float64
	SLG    float64

	// Defined is false when AB+BB+SF+HBP is zero; the metrics are then
	// meaningless and left at zero.
	Defined bool
	WOBA    float64
	WRAA    float64
	WRCPlus float64
}

func (v SeasonValue) GetYear() int { return v.Year }

// Season calibrates year's environment and values every detailed row of
// that year. Rows without detail are skipped.
func Season(year int, rows []stats.BatterSeason) (Environment, []SeasonValue) {
	env := Calibrate(year, rows)
	out := make([]SeasonValue, 0, env.Rows)
	for _, r := range rows {
		if r.Year != year || !r.HasDetail() {
			continue
		}
		v := SeasonValue{
			Player: r.Player,
			Team:   r.Team,
			Year:   r.Year,
			PA:     r.PA,
			AVG:    r.AVG(),
			OBP:    r.OBP(),
			SLG:    r.SLG(),
		}
		ev, _ := EventsOf(r)
		if woba, ok := env.WOBA(ev); ok {
			v.Defined = true
			v.WOBA = woba
			v.WRAA = env.WRAA(woba, float64(r.PA))
			v.WRCPlus = env.WRCPlus(woba)
		}
		out = append(out, v)
	}
	return env, out
}

// Seasons runs Season for every year present in rows that has detail.
func Seasons(rows []stats.BatterSeason) ([]Environment, []SeasonValue) {
	var (
		envs   []Environment
		values []SeasonValue
	)
	for _, y := range stats.Years(rows) {
		env, vs := Season(y, rows)
		if env.Rows == 0 {
			continue
		}
		envs = append(envs, env)
		values = append(values, vs...)
	}
	return envs, values
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

// ErrTooFewSamples is returned when a statistic needs more qualified rows.
var ErrTooFewSamples = errors.New("too few qualified samples")

// Correlation reports how closely wOBA tracks SLG and OBP. Both are
// expected above 0.9 on a correct calibration.
type Correlation struct {
	N     int
	SLG   float64
	OBP   float64
	MinPA int
}

// Validate correlates wOBA with SLG and OBP over values with PA ≥ minPA.
func Validate(values []SeasonValue, minPA int) (Correlation, error) {
	var woba, slg, obp []float64
	for _, v := range values {
		if !v.Defined || v.PA < minPA {
			continue
		}
		woba = append(woba, v.WOBA)
		slg = append(slg, v.SLG)
		obp = append(obp, v.OBP)
	}
	c := Correlation{N: len(woba), MinPA: minPA}
	if c.N < 3 {
		return c, ErrTooFewSamples
	}
	c.SLG = stat.Correlation(woba, slg, nil)
	c.OBP = stat.Correlation(woba, obp, nil)
	if math.IsNaN(c.SLG) || math.IsNaN(c.OBP) {
		return c, errors.New("correlation undefined: constant series")
	}
	return c, nil
}
