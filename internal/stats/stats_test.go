package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInnings(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.2", 123 + 2.0/3.0},
		{"123.1", 123 + 1.0/3.0},
		{"123.0", 123},
		{"0.0", 0},
		{"57", 57},
		{" 9.1 ", 9 + 1.0/3.0},
		{"", 0},
		{"abc", 0},
		{"12.x", 0},
		{"12.5", 0},
		{"-3.1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseInnings(tt.in), 1e-12)
		})
	}
}

func TestFormatInnings(t *testing.T) {
	assert.Equal(t, "123.2", FormatInnings(ParseInnings("123.2")))
	assert.Equal(t, "0.0", FormatInnings(0))
	assert.Equal(t, "7.1", FormatInnings(7+1.0/3.0))
}

func TestBatterSeasonRates(t *testing.T) {
	b := BatterSeason{
		PA: 600, AB: 520, H: 150, HR: 25, BB: 60, HBP: 8,
		Detail: &BattingDetail{Doubles: 30, Triples: 3, SF: 5, R: 80},
	}
	assert.Equal(t, 92, b.Singles())
	assert.InDelta(t, 150.0/520.0, b.AVG(), 1e-12)
	assert.InDelta(t, 218.0/593.0, b.OBP(), 1e-12)
	tb := 92 + 60 + 9 + 100
	assert.InDelta(t, float64(tb)/520.0, b.SLG(), 1e-12)
	assert.InDelta(t, b.OBP()+b.SLG(), b.OPS(), 1e-12)

	v, ok := b.Stat(Key2B)
	require.True(t, ok)
	assert.Equal(t, 30.0, v)
}

func TestBatterSeasonWithoutDetailUsesReportedRates(t *testing.T) {
	b := BatterSeason{PA: 400, AB: 360, H: 90, ReportedOBP: .330, ReportedSLG: .410}
	assert.Equal(t, .330, b.OBP())
	assert.Equal(t, .410, b.SLG())
	assert.InDelta(t, .740, b.OPS(), 1e-12)

	_, ok := b.Stat(Key2B)
	assert.False(t, ok)
	_, ok = b.Stat(KeySF)
	assert.False(t, ok)
}

func TestPitcherSeasonRates(t *testing.T) {
	p := PitcherSeason{IP: ParseInnings("150.1"), ER: 50, HA: 130, BB: 40}
	assert.InDelta(t, 50*9/(150+1.0/3.0), p.ERA(), 1e-12)
	assert.InDelta(t, 170/(150+1.0/3.0), p.WHIP(), 1e-12)

	zero := PitcherSeason{ER: 3}
	assert.Equal(t, 0.0, zero.ERA())
	assert.Equal(t, 0.0, zero.WHIP())
}

func TestAgeOn(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 26, AgeOn(date(2000, time.April, 1), 2026), "birthday on opening day counts")
	assert.Equal(t, 25, AgeOn(date(2000, time.April, 2), 2026))
	assert.Equal(t, 26, AgeOn(date(2000, time.March, 31), 2026))
	assert.Equal(t, 25, AgeOn(date(2000, time.December, 1), 2026))

	b := Birthdays{"Kondo": date(1993, time.August, 9)}
	age, ok := b.AgeAt("Kondo", 2026)
	require.True(t, ok)
	assert.Equal(t, 32, age)

	_, ok = b.AgeAt("Unknown", 2026)
	assert.False(t, ok)
}

func TestRegistryKinds(t *testing.T) {
	rates := Rates(BatterCategories())
	assert.Len(t, rates, 4)
	for _, c := range rates {
		assert.Equal(t, KindRate, c.Kind)
	}
	for _, c := range PitcherCategories() {
		assert.Equal(t, BasisIP, c.Basis)
	}
	c, ok := Lookup(BatterCategories(), KeySF)
	require.True(t, ok)
	assert.True(t, c.Optional)
}

func TestYears(t *testing.T) {
	rows := []TeamSeason{{Year: 2024}, {Year: 2022}, {Year: 2024}, {Year: 2023}}
	assert.Equal(t, []int{2022, 2023, 2024}, Years(rows))
}

func TestRoster(t *testing.T) {
	r := make(Roster)
	assert.False(t, r.Has(2026))
	r.Add(2026, "阪神", "佐藤輝明")
	r.Add(2026, "阪神", "近本光司")
	assert.True(t, r.Has(2026))
	assert.Len(t, r.Teams(2026)["阪神"], 2)
}
