// Package stats defines the season-level data model shared by every stage of
// the projection pipeline: player and team season rows, the stat category
// registry, and the small parsing helpers the ingestion boundary relies on.
package stats

// Kind separates per-opportunity rates from season totals.
type Kind int

const (
	KindRate Kind = iota
	KindCount
)

func (k Kind) String() string {
	if k == KindRate {
		return "rate"
	}
	return "count"
}

// Basis is the playing-time measure a category is weighted by.
type Basis int

const (
	BasisPA Basis = iota // plate appearances
	BasisIP              // innings pitched
)

func (b Basis) String() string {
	if b == BasisIP {
		return "IP"
	}
	return "PA"
}

// Category describes one projected statistic. Optional categories are only
// present on rows whose source carried the extra-base-hit detail.
type Category struct {
	Key      string
	Kind     Kind
	Basis    Basis
	Optional bool
}

// Stat keys.
const (
	KeyAVG  = "AVG"
	KeyOBP  = "OBP"
	KeySLG  = "SLG"
	KeyOPS  = "OPS"
	KeyPA   = "PA"
	KeyAB   = "AB"
	KeyH    = "H"
	Key2B   = "2B"
	Key3B   = "3B"
	KeyHR   = "HR"
	KeyRBI  = "RBI"
	KeySB   = "SB"
	KeyBB   = "BB"
	KeyHBP  = "HBP"
	KeySO   = "SO"
	KeySF   = "SF"
	KeyR    = "R"
	KeyERA  = "ERA"
	KeyWHIP = "WHIP"
	KeyIP   = "IP"
	KeyW    = "W"
	KeyL    = "L"
	KeySV   = "SV"
	KeyHLD  = "HLD"
	KeyBF   = "BF"
	KeyHA   = "HA"
	KeyHRA  = "HRA"
	KeyER   = "ER"
)

// --------------------------------------------------------------------------
// Registry shared by the aggregator and the engine
// --------------------------------------------------------------------------

var batterCategories = []Category{
	{Key: KeyAVG, Kind: KindRate, Basis: BasisPA},
	{Key: KeyOBP, Kind: KindRate, Basis: BasisPA},
	{Key: KeySLG, Kind: KindRate, Basis: BasisPA},
	{Key: KeyOPS, Kind: KindRate, Basis: BasisPA},
	{Key: KeyAB, Kind: KindCount, Basis: BasisPA},
	{Key: KeyH, Kind: KindCount, Basis: BasisPA},
	{Key: KeyHR, Kind: KindCount, Basis: BasisPA},
	{Key: KeyRBI, Kind: KindCount, Basis: BasisPA},
	{Key: KeySB, Kind: KindCount, Basis: BasisPA},
	{Key: KeyBB, Kind: KindCount, Basis: BasisPA},
	{Key: KeyHBP, Kind: KindCount, Basis: BasisPA},
	{Key: KeySO, Kind: KindCount, Basis: BasisPA},
	{Key: Key2B, Kind: KindCount, Basis: BasisPA, Optional: true},
	{Key: Key3B, Kind: KindCount, Basis: BasisPA, Optional: true},
	{Key: KeySF, Kind: KindCount, Basis: BasisPA, Optional: true},
	{Key: KeyR, Kind: KindCount, Basis: BasisPA, Optional: true},
}

var pitcherCategories = []Category{
	{Key: KeyERA, Kind: KindRate, Basis: BasisIP},
	{Key: KeyWHIP, Kind: KindRate, Basis: BasisIP},
	{Key: KeyW, Kind: KindCount, Basis: BasisIP},
	{Key: KeyL, Kind: KindCount, Basis: BasisIP},
	{Key: KeySV, Kind: KindCount, Basis: BasisIP},
	{Key: KeySO, Kind: KindCount, Basis: BasisIP},
	{Key: KeyBB, Kind: KindCount, Basis: BasisIP},
	{Key: KeyHBP, Kind: KindCount, Basis: BasisIP},
	{Key: KeyHRA, Kind: KindCount, Basis: BasisIP},
	{Key: KeyBF, Kind: KindCount, Basis: BasisIP},
}

// BatterCategories returns a copy of the batter registry.
func BatterCategories() []Category {
	return append([]Category(nil), batterCategories...)
}

// PitcherCategories returns a copy of the pitcher registry.
func PitcherCategories() []Category {
	return append([]Category(nil), pitcherCategories...)
}

// Rates filters cats down to rate categories.
func Rates(cats []Category) []Category {
	return filter(cats, func(c Category) bool { return c.Kind == KindRate })
}

// Counts filters cats down to count categories.
func Counts(cats []Category) []Category {
	return filter(cats, func(c Category) bool { return c.Kind == KindCount })
}

// Lookup finds a category by key.
func Lookup(cats []Category, key string) (Category, bool) {
	for _, c := range cats {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

func filter(cats []Category, keep func(Category) bool) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
