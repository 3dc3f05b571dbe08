package stats

import "slices"

// Line is anything that can be weighted and queried by category key: an
// actual season row or a projection.
type Line interface {
	PlayingTime() float64
	Stat(key string) (float64, bool)
}

// --------------------------------------------------------------------------
// Batters
// --------------------------------------------------------------------------

// BattingDetail holds the extra-base-hit breakdown only the official league
// tables publish. Rows from the basic source have no detail.
type BattingDetail struct {
	Doubles int
	Triples int
	SF      int
	R       int
}

// BatterSeason is one player-team-year batting row. Rates are derived from
// the counts on every call; ReportedOBP and ReportedSLG are consulted only
// when Detail is nil and the counts alone cannot produce them.
type BatterSeason struct {
	Player string
	Team   string
	Year   int

	PA  int
	AB  int
	H   int
	HR  int
	RBI int
	SB  int
	BB  int
	HBP int
	SO  int

	Detail *BattingDetail

	ReportedOBP float64
	ReportedSLG float64
}

// HasDetail reports whether doubles, triples, SF and runs are known.
func (b BatterSeason) HasDetail() bool { return b.Detail != nil }

// Singles is H − 2B − 3B − HR. Zero without detail.
func (b BatterSeason) Singles() int {
	if b.Detail == nil {
		return 0
	}
	return b.H - b.Detail.Doubles - b.Detail.Triples - b.HR
}

func (b BatterSeason) AVG() float64 {
	return ratio(float64(b.H), float64(b.AB))
}

func (b BatterSeason) OBP() float64 {
	if b.Detail == nil {
		return b.ReportedOBP
	}
	return ratio(float64(b.H+b.BB+b.HBP), float64(b.AB+b.BB+b.HBP+b.Detail.SF))
}

func (b BatterSeason) SLG() float64 {
	if b.Detail == nil {
		return b.ReportedSLG
	}
	tb := b.Singles() + 2*b.Detail.Doubles + 3*b.Detail.Triples + 4*b.HR
	return ratio(float64(tb), float64(b.AB))
}

func (b BatterSeason) OPS() float64 { return b.OBP() + b.SLG() }

func (b BatterSeason) PlayingTime() float64 { return float64(b.PA) }

// Stat implements Line.
func (b BatterSeason) Stat(key string) (float64, bool) {
	switch key {
	case KeyAVG:
		return b.AVG(), true
	case KeyOBP:
		return b.OBP(), true
	case KeySLG:
		return b.SLG(), true
	case KeyOPS:
		return b.OPS(), true
	case KeyPA:
		return float64(b.PA), true
	case KeyAB:
		return float64(b.AB), true
	case KeyH:
		return float64(b.H), true
	case KeyHR:
		return float64(b.HR), true
	case KeyRBI:
		return float64(b.RBI), true
	case KeySB:
		return float64(b.SB), true
	case KeyBB:
		return float64(b.BB), true
	case KeyHBP:
		return float64(b.HBP), true
	case KeySO:
		return float64(b.SO), true
	}
	if b.Detail == nil {
		return 0, false
	}
	switch key {
	case Key2B:
		return float64(b.Detail.Doubles), true
	case Key3B:
		return float64(b.Detail.Triples), true
	case KeySF:
		return float64(b.Detail.SF), true
	case KeyR:
		return float64(b.Detail.R), true
	}
	return 0, false
}

// --------------------------------------------------------------------------
// Pitchers
// --------------------------------------------------------------------------

// PitcherSeason is one player-team-year pitching row. IP is already a true
// decimal (see ParseInnings).
type PitcherSeason struct {
	Player string
	Team   string
	Year   int

	IP  float64
	W   int
	L   int
	SV  int
	HLD int
	BF  int
	HA  int
	HRA int
	BB  int
	HBP int
	SO  int
	R   int
	ER  int
}

func (p PitcherSeason) ERA() float64 {
	return ratio(float64(p.ER)*9, p.IP)
}

func (p PitcherSeason) WHIP() float64 {
	return ratio(float64(p.HA+p.BB), p.IP)
}

func (p PitcherSeason) PlayingTime() float64 { return p.IP }

// Stat implements Line.
func (p PitcherSeason) Stat(key string) (float64, bool) {
	switch key {
	case KeyERA:
		return p.ERA(), true
	case KeyWHIP:
		return p.WHIP(), true
	case KeyIP:
		return p.IP, true
	case KeyW:
		return float64(p.W), true
	case KeyL:
		return float64(p.L), true
	case KeySV:
		return float64(p.SV), true
	case KeyHLD:
		return float64(p.HLD), true
	case KeyBF:
		return float64(p.BF), true
	case KeyHA:
		return float64(p.HA), true
	case KeyHRA:
		return float64(p.HRA), true
	case KeyBB:
		return float64(p.BB), true
	case KeyHBP:
		return float64(p.HBP), true
	case KeySO:
		return float64(p.SO), true
	case KeyR:
		return float64(p.R), true
	case KeyER:
		return float64(p.ER), true
	}
	return 0, false
}

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// TeamSeason is one row of a season's standings.
type TeamSeason struct {
	Team   string
	League string
	Year   int
	G      int
	W      int
	L      int
	D      int
	RS     float64
	RA     float64
}

// Decisions is W + L; ties are excluded from win percentage.
func (t TeamSeason) Decisions() int { return t.W + t.L }

// WinPct is W / (W + L), zero when no decisions.
func (t TeamSeason) WinPct() float64 {
	return ratio(float64(t.W), float64(t.Decisions()))
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// Lines converts typed rows to the Line interface.
func Lines[T Line](rows []T) []Line {
	out := make([]Line, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// Years returns the distinct years present in rows, ascending.
func Years[T interface{ GetYear() int }](rows []T) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range rows {
		y := r.GetYear()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	slices.Sort(years)
	return years
}

func (b BatterSeason) GetYear() int { return b.Year }
func (p PitcherSeason) GetYear() int { return p.Year }
func (t TeamSeason) GetYear() int    { return t.Year }

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
