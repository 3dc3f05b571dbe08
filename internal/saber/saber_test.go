package saber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/npb-projections/internal/stats"
)

func detailed(player string, year, pa, ab, h, d, t, hr, bb, hbp, sf, r int) stats.BatterSeason {
	return stats.BatterSeason{
		Player: player, Team: "ヤクルト", Year: year,
		PA: pa, AB: ab, H: h, HR: hr, BB: bb, HBP: hbp,
		Detail: &stats.BattingDetail{Doubles: d, Triples: t, SF: sf, R: r},
	}
}

func sampleSeason() []stats.BatterSeason {
	return []stats.BatterSeason{
		detailed("Murakami", 2024, 600, 500, 140, 25, 1, 33, 85, 8, 5, 80),
		detailed("Nagaoka", 2024, 560, 520, 155, 28, 4, 3, 30, 3, 4, 60),
		detailed("Dominguez", 2024, 300, 270, 66, 12, 0, 10, 25, 2, 2, 30),
		detailed("Bench", 2024, 120, 110, 22, 3, 0, 1, 8, 1, 1, 9),
		{Player: "NoDetail", Year: 2024, PA: 400, AB: 360, H: 100, ReportedOBP: .330, ReportedSLG: .420},
	}
}

func TestCalibrateSelfConsistency(t *testing.T) {
	rows := sampleSeason()
	env := Calibrate(2024, rows)
	require.Equal(t, 4, env.Rows, "rows without detail are ignored")

	assert.InDelta(t, env.LeagueOBP/env.RawWOBA, env.Scale, 1e-12)
	assert.InDelta(t, env.LeagueOBP, env.LeagueWOBA, 1e-12)
	assert.InDelta(t, RawWeights.HomeRun/RawWeights.BB, env.Weights.HomeRun/env.Weights.BB, 1e-12)

	var num, den float64
	for _, r := range rows {
		if !r.HasDetail() {
			continue
		}
		ev, ok := EventsOf(r)
		require.True(t, ok)
		woba, ok := env.WOBA(ev)
		require.True(t, ok)
		num += woba * ev.Denominator()
		den += ev.Denominator()
	}
	assert.InDelta(t, env.LeagueOBP, num/den, 1e-12, "recomputed league wOBA equals league OBP")

	totalR := 80.0 + 60 + 30 + 9
	assert.InDelta(t, totalR/1580, env.RunsPerPA, 1e-12)
}

func TestLeagueAverageHitter(t *testing.T) {
	env := Calibrate(2024, sampleSeason())
	assert.InDelta(t, 0.0, env.WRAA(env.LeagueWOBA, 600), 1e-9)
	assert.InDelta(t, 100.0, env.WRCPlus(env.LeagueWOBA), 1e-9)

	better := env.LeagueWOBA + .030
	assert.InDelta(t, .030/env.Scale*500, env.WRAA(better, 500), 1e-9)
	assert.Greater(t, env.WRCPlus(better), 100.0)
}

func TestWOBAUndefinedAtZeroDenominator(t *testing.T) {
	env := External(.320, 1.2, .12)
	_, ok := env.WOBA(Events{PA: 1})
	assert.False(t, ok)

	w, ok := env.WOBA(Events{AB: 4, Single: 1, HomeRun: 1})
	require.True(t, ok)
	assert.InDelta(t, (0.88+2.10)*1.2/4, w, 1e-12)
}

func TestEmptySeasonDefaults(t *testing.T) {
	env := Calibrate(2010, sampleSeason())
	assert.Equal(t, 0, env.Rows)
	assert.Equal(t, 1.0, env.Scale)
	assert.Equal(t, DefaultRunsPerPA, env.RunsPerPA)
	assert.Equal(t, RawWeights, env.Weights)
}

func TestExternalSanitises(t *testing.T) {
	env := External(.310, 0, -1)
	assert.Equal(t, 1.0, env.Scale)
	assert.Equal(t, DefaultRunsPerPA, env.RunsPerPA)
}

func TestSeasonValues(t *testing.T) {
	env, values := Season(2024, sampleSeason())
	require.Len(t, values, 4)
	assert.Equal(t, 2024, env.Year)

	var top SeasonValue
	for _, v := range values {
		assert.True(t, v.Defined)
		if v.WRCPlus > top.WRCPlus {
			top = v
		}
	}
	assert.Equal(t, "Murakami", top.Player)
	assert.Greater(t, top.WRAA, 0.0)

	envs, all := Seasons(sampleSeason())
	require.Len(t, envs, 1)
	assert.Len(t, all, 4)
}

func TestFitFallbackRecoversLinearRelation(t *testing.T) {
	var values []SeasonValue
	obps := []float64{.300, .320, .350, .280, .365, .310, .330}
	slgs := []float64{.380, .450, .520, .330, .600, .410, .400}
	for i := range obps {
		values = append(values, SeasonValue{
			PA: 400 + i*10, OBP: obps[i], SLG: slgs[i], Defined: true,
			WOBA: .55*obps[i] + .45*slgs[i] + .015,
		})
	}
	values = append(values, SeasonValue{PA: 20, OBP: .9, SLG: .9, WOBA: .1, Defined: true})

	fit, err := FitFallback(values, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, fit.N, "rows under the PA floor are excluded")
	assert.InDelta(t, .55, fit.OBP, 1e-9)
	assert.InDelta(t, .45, fit.SLG, 1e-9)
	assert.InDelta(t, .015, fit.Intercept, 1e-9)
	assert.InDelta(t, .55*.33+.45*.44+.015, fit.Predict(.33, .44), 1e-9)

	_, err = FitFallback(values[:2], 100)
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestEstimatorSources(t *testing.T) {
	env := Calibrate(2024, sampleSeason())
	fit := &Fit{OBP: .5, SLG: .5, Intercept: 0}

	est := NewEstimator(env, fit)
	direct := est.Evaluate(sampleSeason()[0])
	assert.Equal(t, Direct, direct.Source)

	reg := est.Evaluate(sampleSeason()[4])
	assert.Equal(t, Regression, reg.Source)
	assert.InDelta(t, .375, reg.WOBA, 1e-12)
	assert.InDelta(t, env.WRAA(.375, 400), reg.WRAA, 1e-9)

	none := NewEstimator(env, nil).Evaluate(sampleSeason()[4])
	assert.Equal(t, Unavailable, none.Source)
	assert.Equal(t, "unavailable", none.Source.String())
}

func TestValidateCorrelation(t *testing.T) {
	_, values := Season(2024, sampleSeason())
	c, err := Validate(values, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, c.N)
	assert.Greater(t, c.OBP, 0.0)

	_, err = Validate(values, 500)
	assert.ErrorIs(t, err, ErrTooFewSamples)
}
