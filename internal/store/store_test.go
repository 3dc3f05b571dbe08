package store

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/league"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/saber"
)

func TestUpsertSQL(t *testing.T) {
	u := Upsert{Table: "t", Cols: []string{"year", "team", "wins"}, Key: []string{"year", "team"}}
	assert.Equal(t,
		"INSERT INTO t (year, team, wins) VALUES ($1, $2, $3) ON CONFLICT (year, team) DO UPDATE SET wins = EXCLUDED.wins, updated_at = NOW()",
		u.SQL())
}

func TestSchemaCoversEveryUpsert(t *testing.T) {
	for _, u := range []Upsert{batterProjections, pitcherProjections, batterValues, teamRecords, projectedStandings} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+u.Table+" (")
		assert.Contains(t, schema, "PRIMARY KEY ("+strings.Join(u.Key, ", ")+")")
	}
}

func snapshot() *forecast.Snapshot {
	return &forecast.Snapshot{
		Target: 2026,
		Batters: []marcel.Projection{
			{Player: "Murakami", Team: "ヤクルト", Side: marcel.Batter, TargetYear: 2026, Age: 26, AgeKnown: true, DataYears: 3, Time: 560,
				Rates: map[string]float64{"OBP": .380}, Counts: map[string]float64{"HR": 33},
				Baseline: league.Resolution{Requested: 2025, Year: 2025, Status: league.Found}},
			{Player: "Rookie", Team: "阪神", Side: marcel.Batter, TargetYear: 2026, DataYears: 1, Time: 220},
		},
		BatterValues: []saber.Value{
			{WOBA: .390, WRCPlus: 150, WRAA: 30, Source: saber.Direct},
			{Source: saber.Unavailable},
		},
		Pitchers: []marcel.Projection{
			{Player: "Ogawa", Team: "ヤクルト", Side: marcel.Pitcher, TargetYear: 2026, DataYears: 2, Time: 140, Rates: map[string]float64{"ERA": 3.4}},
		},
		SeasonValues: []saber.SeasonValue{
			{Player: "Murakami", Team: "ヤクルト", Year: 2025, PA: 600, Defined: true, WOBA: .400},
			{Player: "Ghost", Team: "ヤクルト", Year: 2025},
		},
		Records:   []pythag.Record{{Team: "阪神", League: "CL", Year: 2025, W: 85, L: 54}},
		Standings: []pythag.TeamProjection{{Year: 2026, Team: "阪神", League: "CL", Rank: 1, G: 143}},
	}
}

func TestTablesFromSnapshot(t *testing.T) {
	tables := Tables(snapshot())
	require.Len(t, tables, 5)
	for _, tb := range tables {
		for _, row := range tb.Rows {
			assert.Len(t, row, len(tb.Cols), tb.Table)
		}
	}

	bp := tables[0]
	require.Len(t, bp.Rows, 2)
	assert.Equal(t, 26, bp.Rows[0][3])
	assert.Nil(t, bp.Rows[1][3], "unknown age is NULL")
	assert.Nil(t, bp.Rows[1][7], "unavailable wOBA is NULL")
	assert.Equal(t, "unavailable", bp.Rows[1][10])
	assert.Equal(t, "found(2025)", bp.Rows[0][11])

	var stats map[string]float64
	require.NoError(t, json.Unmarshal(bp.Rows[0][6].([]byte), &stats))
	assert.Equal(t, map[string]float64{"OBP": .380, "HR": 33}, stats)

	bv := tables[2]
	require.Len(t, bv.Rows, 2)
	assert.Equal(t, .400, bv.Rows[0][7])
	assert.Nil(t, bv.Rows[1][7], "undefined wOBA is NULL")

	assert.Len(t, tables[3].Rows, 1)
	assert.Len(t, tables[4].Rows, 1)
}

func TestResultSummary(t *testing.T) {
	r := Result{Target: 2026, Rows: map[string]int{"batter_projections": 2, "projected_standings": 12}}
	assert.Equal(t,
		"target=2026 batter_projections=2 pitcher_projections=0 batter_values=0 team_records=0 projected_standings=12",
		r.Summary())
}
