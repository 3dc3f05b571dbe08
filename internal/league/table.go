package league

import (
	"fmt"
	"slices"

	"github.com/albapepper/npb-projections/internal/stats"
)

// Status tags how a baseline lookup was satisfied.
type Status int

const (
	Found Status = iota
	FellBack
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case FellBack:
		return "fell_back"
	default:
		return "unavailable"
	}
}

// Resolution is the outcome of Table.Resolve.
type Resolution struct {
	Requested int
	Year      int
	Status    Status
}

func (r Resolution) String() string {
	switch r.Status {
	case Found:
		return fmt.Sprintf("found(%d)", r.Year)
	case FellBack:
		return fmt.Sprintf("fell_back_to(%d)", r.Year)
	default:
		return fmt.Sprintf("unavailable(%d)", r.Requested)
	}
}

// Table holds baselines by year. It is built once per run and read only.
type Table map[int]Baseline

// Build aggregates one baseline per requested year from rows grouped by
// year. Years with no rows get an empty baseline.
func Build[T interface {
	stats.Line
	GetYear() int
}](rows []T, cats []stats.Category, years []int) Table {
	byYear := make(map[int][]stats.Line)
	for _, r := range rows {
		byYear[r.GetYear()] = append(byYear[r.GetYear()], r)
	}
	t := make(Table, len(years))
	for _, y := range years {
		t[y] = Aggregate(y, byYear[y], cats)
	}
	return t
}

// Resolve returns the baseline for year, or the most recent earlier season
// with playing time when year is missing or empty.
func (t Table) Resolve(year int) (Baseline, Resolution) {
	if b, ok := t[year]; ok && !b.Empty() {
		return b, Resolution{Requested: year, Year: year, Status: Found}
	}
	years := make([]int, 0, len(t))
	for y, b := range t {
		if y < year && !b.Empty() {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return Baseline{Year: year}, Resolution{Requested: year, Status: Unavailable}
	}
	best := slices.Max(years)
	return t[best], Resolution{Requested: year, Year: best, Status: FellBack}
}
