package backtest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/stats"
)

type line map[string]float64

func (l line) PlayingTime() float64 { return l["PA"] }
func (l line) Stat(key string) (float64, bool) {
	v, ok := l[key]
	return v, ok
}

func TestCompareInnerJoin(t *testing.T) {
	actual := map[string]stats.Line{
		"A": line{"OPS": .800},
		"B": line{"OPS": .700},
		"C": line{"OPS": .650},
	}
	projected := map[string]stats.Line{
		"A": line{"OPS": .780},
		"B": line{"OPS": .740},
		"D": line{"OPS": .900},
	}
	ms := Compare(actual, projected, []string{"OPS", "ERA"})
	require.Len(t, ms, 2)

	ops := ms[0]
	assert.Equal(t, 2, ops.N)
	assert.InDelta(t, .030, ops.MAE, 1e-12)
	assert.InDelta(t, 0.0316227766, ops.RMSE, 1e-9)
	assert.InDelta(t, .010, ops.Bias, 1e-12)

	assert.Equal(t, 0, ms[1].N, "categories neither side carries score nothing")
}

func engine(t *testing.T) *marcel.Engine {
	t.Helper()
	e, err := marcel.NewEngine(marcel.DefaultParams(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return e
}

func TestPlayersUsesOnlyPriorData(t *testing.T) {
	b := func(player string, year, pa int, obp, slg float64) stats.BatterSeason {
		return stats.BatterSeason{Player: player, Year: year, PA: pa, AB: pa - 50, H: (pa - 50) / 4, ReportedOBP: obp, ReportedSLG: slg}
	}
	batters := []stats.BatterSeason{
		b("Steady", 2022, 550, .330, .430),
		b("Steady", 2023, 560, .330, .430),
		b("Part", 2023, 150, .300, .350),
		b("Steady", 2024, 580, .330, .430),
		b("Part", 2024, 450, .310, .360),
		b("Future", 2025, 600, .400, .600),
	}
	pitchers := []stats.PitcherSeason{
		{Player: "Ace", Year: 2023, IP: 170, ER: 45, HA: 140, BB: 35},
		{Player: "Ace", Year: 2024, IP: 160, ER: 60, HA: 150, BB: 45},
	}

	rep := Players(engine(t), batters, pitchers, 2024, DefaultQualification())
	assert.Equal(t, 2024, rep.Target)
	require.Len(t, rep.Batters, 4)
	for _, m := range rep.Batters {
		assert.Equal(t, 1, m.N, "only Steady qualifies on both sides (%s)", m.Key)
	}
	require.Len(t, rep.Pitchers, 2)
	assert.Equal(t, 1, rep.Pitchers[0].N)
	assert.Equal(t, stats.KeyERA, rep.Pitchers[0].Key)
	assert.Contains(t, rep.Summary(), "target=2024")
}

func TestTeamsJoin(t *testing.T) {
	proj := []pythag.TeamProjection{
		{Year: 2024, Team: "広島", League: "CL", Wins: 70},
		{Year: 2024, Team: "巨人", League: "CL", Wins: 75},
		{Year: 2024, Team: "Ghost", League: "CL", Wins: 60},
	}
	actual := []stats.TeamSeason{
		{Year: 2024, Team: "広島", W: 68},
		{Year: 2024, Team: "巨人", W: 77},
		{Year: 2023, Team: "Ghost", W: 50},
	}
	r := Teams(proj, actual, 2024)
	assert.Equal(t, 2, r.N)
	assert.InDelta(t, 2.0, r.MAE, 1e-12)
	assert.InDelta(t, 2.0, r.RMSE, 1e-12)
}

func TestRunYearsOrderAndLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	years := []int{2019, 2020, 2021, 2022, 2023, 2024}
	out, err := RunYears(context.Background(), years, 2, func(_ context.Context, y int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return y * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{20190, 20200, 20210, 20220, 20230, 20240}, out)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunYearsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := RunYears(context.Background(), []int{2020, 2021}, 4, func(_ context.Context, y int) (string, error) {
		if y == 2021 {
			return "", boom
		}
		return "ok", nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "backtest 2021")
}
