package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Model holds every tunable constant of the projection pipeline. Fields
// left out of a YAML file keep their defaults.
type Model struct {
	Marcel   MarcelModel   `yaml:"marcel"`
	Value    ValueModel    `yaml:"value"`
	Pythag   PythagModel   `yaml:"pythag"`
	Backtest BacktestModel `yaml:"backtest"`
}

type MarcelModel struct {
	Weights         []float64 `yaml:"weights"`
	RegressionPA    float64   `yaml:"regression_pa"`
	RegressionIP    float64   `yaml:"regression_ip"`
	PeakAge         int       `yaml:"peak_age"`
	AgeFactor       float64   `yaml:"age_factor"`
	PitcherAgeScale float64   `yaml:"pitcher_age_scale"`
}

type ValueModel struct {
	// FallbackMinPA is the PA floor for seasons feeding the OBP/SLG fit.
	FallbackMinPA int `yaml:"fallback_min_pa"`
	// ValidationMinPA is the PA floor for the correlation check.
	ValidationMinPA int `yaml:"validation_min_pa"`
}

type PythagModel struct {
	Exponent             float64     `yaml:"exponent"`
	RefYears             int         `yaml:"ref_years"`
	MinPA                float64     `yaml:"min_pa"`
	MinIP                float64     `yaml:"min_ip"`
	DefaultLeagueERA     float64     `yaml:"default_league_era"`
	UncertaintyPerPlayer float64     `yaml:"uncertainty_per_player"`
	DefaultGames         int         `yaml:"default_games"`
	SeasonGames          map[int]int `yaml:"season_games"`
}

type BacktestModel struct {
	QualifiedPA float64 `yaml:"qualified_pa"`
	QualifiedIP float64 `yaml:"qualified_ip"`
	FirstYear   int     `yaml:"first_year"`
	Workers     int     `yaml:"workers"`
}

// DefaultModel returns the standard constants.
func DefaultModel() Model {
	return Model{
		Marcel: MarcelModel{
			Weights:         []float64{5, 4, 3},
			RegressionPA:    1200,
			RegressionIP:    600,
			PeakAge:         29,
			AgeFactor:       0.003,
			PitcherAgeScale: 0.300,
		},
		Value: ValueModel{
			FallbackMinPA:   100,
			ValidationMinPA: 200,
		},
		Pythag: PythagModel{
			Exponent:             1.72,
			RefYears:             3,
			MinPA:                100,
			MinIP:                30,
			DefaultLeagueERA:     3.5,
			UncertaintyPerPlayer: 1.5,
			DefaultGames:         143,
			SeasonGames:          map[int]int{2020: 120},
		},
		Backtest: BacktestModel{
			QualifiedPA: 400,
			QualifiedIP: 100,
			FirstYear:   2018,
			Workers:     4,
		},
	}
}

// LoadModel overlays the YAML file at path onto DefaultModel. An empty path
// returns the defaults.
func LoadModel(path string) (Model, error) {
	m := DefaultModel()
	if path == "" {
		return m, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read model params: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("parse model params %s: %w", path, err)
	}
	if len(m.Marcel.Weights) != 3 {
		return m, fmt.Errorf("model params %s: marcel.weights needs 3 values, got %d", path, len(m.Marcel.Weights))
	}
	return m, nil
}
