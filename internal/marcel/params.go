// Package marcel projects next-season player lines with the Marcel method:
// three prior seasons weighted 5/4/3, regressed toward the league per
// category, then adjusted for age.
package marcel

import (
	"errors"
	"fmt"
)

// Params are the method constants. DefaultParams matches the published
// Marcel defaults used for NPB.
type Params struct {
	// Weights apply to T−1, T−2, T−3 in that order. They are never
	// renormalised.
	Weights [3]float64

	RegressionPA float64
	RegressionIP float64

	PeakAge   int
	AgeFactor float64

	// PitcherAgeScale converts the batting-rate age step onto ERA/WHIP
	// magnitude: stat -= adj * stat / PitcherAgeScale.
	// TODO: recalibrate against NPB aging curves; 0.300 is inherited.
	PitcherAgeScale float64
}

// DefaultParams returns the standard constants.
func DefaultParams() Params {
	return Params{
		Weights:         [3]float64{5, 4, 3},
		RegressionPA:    1200,
		RegressionIP:    600,
		PeakAge:         29,
		AgeFactor:       0.003,
		PitcherAgeScale: 0.300,
	}
}

// Validate rejects constants the algorithm cannot use.
func (p Params) Validate() error {
	var errs []error
	for i, w := range p.Weights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("weight T-%d is negative: %v", i+1, w))
		}
	}
	if p.RegressionPA < 0 {
		errs = append(errs, fmt.Errorf("regression PA is negative: %v", p.RegressionPA))
	}
	if p.RegressionIP < 0 {
		errs = append(errs, fmt.Errorf("regression IP is negative: %v", p.RegressionIP))
	}
	if p.PeakAge <= 0 {
		errs = append(errs, fmt.Errorf("peak age must be positive: %d", p.PeakAge))
	}
	if p.PitcherAgeScale <= 0 {
		errs = append(errs, fmt.Errorf("pitcher age scale must be positive: %v", p.PitcherAgeScale))
	}
	return errors.Join(errs...)
}

// AgeAdjustment is (peak − age) · factor; positive before the peak.
func (p Params) AgeAdjustment(age int) float64 {
	return float64(p.PeakAge-age) * p.AgeFactor
}
