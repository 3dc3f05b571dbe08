package table

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/npb-projections/internal/league"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/stats"
)

const battersCSV = "\ufeffplayer,team,year,PA,AB,H,HR,RBI,SB,BB,HBP,SO,OBP,SLG,2B,3B,SF,R\n" +
	"村上宗隆,ヤクルト,2024,600,500,122,33,86,3,90,5,170,.379,.472,20,1,5,80\n" +
	"近藤健介,ソフトバンク,2024,479,406,128,19,72,1,75,3,74,.439,.533,,,,\n" +
	"村上宗隆,ヤクルト,2024,601,501,123,33,86,3,90,5,170,.380,.473,20,1,5,80\n" +
	",,2024,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1\n"

func TestReadBatters(t *testing.T) {
	rows, err := ReadBatters(strings.NewReader(battersCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank player dropped and duplicates collapsed")

	m := rows[0]
	assert.Equal(t, "村上宗隆", m.Player)
	assert.Equal(t, 601, m.PA, "last row per player-year wins")
	require.True(t, m.HasDetail())
	assert.Equal(t, 20, m.Detail.Doubles)
	assert.Equal(t, 80, m.Detail.R)

	k := rows[1]
	assert.False(t, k.HasDetail(), "blank detail cells mean no detail")
	assert.Equal(t, .439, k.OBP())
}

func TestReadBattersWithoutDetailColumns(t *testing.T) {
	src := "player,team,year,PA,AB,H,HR,BB,HBP,SO,OBP,SLG\n" +
		"A,阪神,2023,300,270,70,5,25,2,60,.330,.370\n" +
		"B,阪神,2023,120,110,25,1,8,0,30,,\n"
	rows, err := ReadBatters(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 1, "row without detail or reported rates is skipped")
	assert.False(t, rows[0].HasDetail())
	assert.Equal(t, 0, rows[0].RBI)
	assert.Equal(t, .330, rows[0].OBP())
}

func TestReadBattersNeedsRatesOrDetail(t *testing.T) {
	src := "player,team,year,PA,AB,H,HR,BB,HBP,SO\nA,巨人,2024,500,440,130,20,50,5,90\n"
	_, err := ReadBatters(strings.NewReader(src))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "batters", se.Table)
	assert.ElementsMatch(t, []string{"OBP", "SLG"}, se.Missing)

	_, err = ReadBatters(strings.NewReader("player,team,year,PA,AB,H,HR,BB,HBP,SO,OBP\nA,巨人,2024,500,440,130,20,50,5,90,.350\n"))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"SLG"}, se.Missing)

	rows, err := ReadBatters(strings.NewReader("player,team,year,PA,AB,H,HR,BB,HBP,SO,2B,3B,SF\nA,巨人,2024,500,440,130,20,50,5,90,25,2,4\n"))
	require.NoError(t, err, "detail columns stand in for reported rates")
	require.Len(t, rows, 1)
	assert.Greater(t, rows[0].OBP(), 0.0)
}

func TestSchemaError(t *testing.T) {
	_, err := ReadBatters(strings.NewReader("player,team,year,PA\nA,B,2024,10\n"))
	require.Error(t, err)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "batters", se.Table)
	assert.Contains(t, se.Missing, "AB")
	assert.NotContains(t, se.Missing, "PA")

	_, err = ReadStandings(strings.NewReader(""))
	require.ErrorAs(t, err, &se)
}

func TestReadPitchersParsesInnings(t *testing.T) {
	src := "player,team,year,IP,ER,HA,BB,SO,W,L\n" +
		"才木浩人,阪神,2024,167.2,32,110,47,142,13,3\n" +
		"Bad,阪神,2024,12.7,5,10,3,9,0,1\n"
	rows, err := ReadPitchers(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 167+2.0/3.0, rows[0].IP, 1e-12)
	assert.Equal(t, 13, rows[0].W)
	assert.Equal(t, 0.0, rows[1].IP, "malformed innings read as zero")
}

func TestReadStandingsSkipsMissingRuns(t *testing.T) {
	src := "team,league,year,G,W,L,D,RS,RA\n" +
		"阪神,CL,2024,143,74,63,6,485,413\n" +
		"巨人,CL,2024,143,77,59,7,,\n"
	rows, err := ReadStandings(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 485.0, rows[0].RS)
	assert.Equal(t, "CL", rows[0].League)
}

func TestReadBirthdaysAndRoster(t *testing.T) {
	b, err := ReadBirthdays(strings.NewReader("player,birthday\nA,2000-02-18\nB,2001/7/4\nC,unknown\n"))
	require.NoError(t, err)
	assert.Len(t, b, 2)
	assert.Equal(t, time.Date(2001, 7, 4, 0, 0, 0, 0, time.UTC), b["B"])

	r, err := ReadRoster(strings.NewReader("year,team,player\n2026,阪神,A\n2026,阪神,B\n2026,巨人,C\n"))
	require.NoError(t, err)
	assert.Len(t, r.Teams(2026)["阪神"], 2)
}

func TestWriteProjectionsRoundTripsThroughCSV(t *testing.T) {
	ps := []marcel.Projection{{
		Player: "A", Team: "阪神", Side: marcel.Batter, TargetYear: 2026,
		Age: 27, AgeKnown: true, DataYears: 3, Time: 512.4,
		Rates:    map[string]float64{stats.KeyAVG: .2801, stats.KeyOBP: .35, stats.KeySLG: .45, stats.KeyOPS: .8},
		Counts:   map[string]float64{stats.KeyHR: 21.26},
		Baseline: league.Resolution{Requested: 2025, Year: 2025, Status: league.Found},
	}}
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Projections(marcel.Batter, ps))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, bom))
	recs, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, bom))).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	col := make(map[string]string)
	for n, h := range recs[0] {
		col[h] = recs[1][n]
	}
	assert.Equal(t, "512", col["PA"])
	assert.Equal(t, "0.280", col["AVG"])
	assert.Equal(t, "21.3", col["HR"])
	assert.Equal(t, "", col["2B"])
	assert.Equal(t, "27", col["age"])
	assert.Equal(t, "found(2025)", col["baseline"])
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(BattersFile, battersCSV)
	write(PitchersFile, "player,team,year,IP,ER,HA,BB,SO\nP,阪神,2024,100.1,30,90,20,80\n")
	write(StandingsFile, "team,league,year,W,L,RS,RA\n阪神,CL,2024,74,63,485,413\n")

	ds, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, ds.Batters, 2)
	assert.Len(t, ds.Pitchers, 1)
	assert.Nil(t, ds.Birthdays, "optional tables may be absent")
	assert.Nil(t, ds.Roster)

	require.NoError(t, os.Remove(filepath.Join(dir, StandingsFile)))
	_, err = LoadDir(dir)
	assert.Error(t, err)
}

func TestWriteFileStandings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "standings.csv")
	err := WriteFile(path, func(w *Writer) error {
		return w.Standings([]pythag.TeamProjection{{Year: 2026, Team: "阪神", League: "CL", Rank: 1, G: 143, Wins: 80.04, Losses: 62.96}})
	})
	require.NoError(t, err)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "2026,CL,1,阪神,143")
	assert.Contains(t, string(body), "80.0,63.0")
}
