package saber

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/albapepper/npb-projections/internal/stats"
)

// Fit is wOBA ≈ OBP·a + SLG·b + c, estimated on seasons with full detail.
type Fit struct {
	OBP       float64
	SLG       float64
	Intercept float64
	N         int
}

// Predict estimates wOBA from OBP and SLG.
func (f Fit) Predict(obp, slg float64) float64 {
	return f.OBP*obp + f.SLG*slg + f.Intercept
}

// FitFallback solves the least-squares fit over defined values with
// PA ≥ minPA.
func FitFallback(values []SeasonValue, minPA int) (Fit, error) {
	var samples []SeasonValue
	for _, v := range values {
		if v.Defined && v.PA >= minPA {
			samples = append(samples, v)
		}
	}
	n := len(samples)
	if n < 3 {
		return Fit{N: n}, fmt.Errorf("fit wOBA fallback: %w (have %d)", ErrTooFewSamples, n)
	}

	x := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i, s := range samples {
		x.Set(i, 0, s.OBP)
		x.Set(i, 1, s.SLG)
		x.Set(i, 2, 1)
		y.SetVec(i, s.WOBA)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return Fit{N: n}, fmt.Errorf("fit wOBA fallback: %w", err)
	}
	return Fit{
		OBP:       beta.AtVec(0),
		SLG:       beta.AtVec(1),
		Intercept: beta.AtVec(2),
		N:         n,
	}, nil
}

// --------------------------------------------------------------------------
// Estimator
// --------------------------------------------------------------------------

// Source tags which path produced a Value.
type Source int

const (
	Direct Source = iota
	Regression
	Unavailable
)

func (s Source) String() string {
	switch s {
	case Direct:
		return "direct"
	case Regression:
		return "regression"
	default:
		return "unavailable"
	}
}

// Value is the linear-weights evaluation of one line.
type Value struct {
	WOBA    float64
	WRAA    float64
	WRCPlus float64
	Source  Source
}

// Estimator values lines in a fixed environment, using the OBP/SLG fit for
// lines that lack extra-base-hit detail.
type Estimator struct {
	env Environment
	fit *Fit
}

// NewEstimator returns an estimator. fit may be nil, in which case lines
// without detail come back Unavailable.
func NewEstimator(env Environment, fit *Fit) Estimator {
	return Estimator{env: env, fit: fit}
}

// Environment returns the estimator's environment.
func (e Estimator) Environment() Environment { return e.env }

// Evaluate values a season row or a projection.
func (e Estimator) Evaluate(line stats.Line) Value {
	pa, _ := line.Stat(stats.KeyPA)

	if ev, ok := EventsOf(line); ok {
		if woba, ok := e.env.WOBA(ev); ok {
			return e.value(woba, pa, Direct)
		}
	}
	if e.fit == nil {
		return Value{Source: Unavailable}
	}
	obp, okOBP := line.Stat(stats.KeyOBP)
	slg, okSLG := line.Stat(stats.KeySLG)
	if !okOBP || !okSLG {
		return Value{Source: Unavailable}
	}
	return e.value(e.fit.Predict(obp, slg), pa, Regression)
}

func (e Estimator) value(woba, pa float64, src Source) Value {
	return Value{
		WOBA:    woba,
		WRAA:    e.env.WRAA(woba, pa),
		WRCPlus: e.env.WRCPlus(woba),
		Source:  src,
	}
}
