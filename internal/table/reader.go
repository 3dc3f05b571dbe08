// Package table is the CSV boundary: it reads normalised season tables into
// the stats model and writes every output table.
package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/albapepper/npb-projections/internal/stats"
)

// SchemaError reports required columns absent from a table header. It is
// the one input failure surfaced to callers.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns %s", e.Table, strings.Join(e.Missing, ", "))
}

const bom = "\ufeff"

// --------------------------------------------------------------------------
// Header and row access
// --------------------------------------------------------------------------

type header map[string]int

func readHeader(r *csv.Reader, name string, required []string) (header, error) {
	cols, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Table: name, Missing: required}
		}
		return nil, fmt.Errorf("%s header: %w", name, err)
	}
	h := make(header, len(cols))
	for i, c := range cols {
		h[strings.TrimSpace(c)] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Table: name, Missing: missing}
	}
	return h, nil
}

func (h header) has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			return false
		}
	}
	return true
}

type row struct {
	h      header
	record []string
}

func (r row) str(col string) string {
	i, ok := r.h[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// intVal parses a whole number; blanks and junk read as 0.
func (r row) intVal(col string) int {
	s := r.str(col)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func (r row) floatVal(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0
	}
	return v
}

func (r row) blank(cols ...string) bool {
	for _, c := range cols {
		if r.str(c) == "" {
			return true
		}
	}
	return false
}

// readRows streams records after the header. Lenient on field counts.
// check, when non-nil, validates the header beyond the required columns.
func readRows(src io.Reader, name string, required []string, check func(header) error, fn func(row)) error {
	br := bufio.NewReader(src)
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		_, _ = br.Discard(len(bom))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	h, err := readHeader(cr, name, required)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(h); err != nil {
			return err
		}
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s line %d: %w", name, line, err)
		}
		fn(row{h: h, record: rec})
	}
}

// --------------------------------------------------------------------------
// Season tables
// --------------------------------------------------------------------------

var (
	batterRequired   = []string{"player", "team", "year", "PA", "AB", "H", "HR", "BB", "HBP", "SO"}
	pitcherRequired  = []string{"player", "team", "year", "IP", "ER", "HA", "BB", "SO"}
	standingRequired = []string{"team", "year", "W", "L", "RS", "RA"}
	detailColumns    = []string{"2B", "3B", "SF"}
	rateColumns      = []string{"OBP", "SLG"}
)

// batterHeader requires the reported OBP and SLG columns unless the header
// carries the detail needed to derive them.
func batterHeader(h header) error {
	if h.has(detailColumns...) || h.has(rateColumns...) {
		return nil
	}
	var missing []string
	for _, c := range rateColumns {
		if !h.has(c) {
			missing = append(missing, c)
		}
	}
	return &SchemaError{Table: "batters", Missing: missing}
}

// ReadBatters reads a batting table. Detail is attached when the 2B, 3B and
// SF columns exist and are filled for the row. Rows with neither detail nor
// both reported OBP and SLG are skipped. The last row per (player, year)
// wins.
func ReadBatters(src io.Reader) ([]stats.BatterSeason, error) {
	var out []stats.BatterSeason
	err := readRows(src, "batters", batterRequired, batterHeader, func(r row) {
		if r.str("player") == "" {
			return
		}
		detailed := r.h.has(detailColumns...) && !r.blank(detailColumns...)
		if !detailed && r.blank(rateColumns...) {
			return
		}
		b := stats.BatterSeason{
			Player:      r.str("player"),
			Team:        r.str("team"),
			Year:        r.intVal("year"),
			PA:          r.intVal("PA"),
			AB:          r.intVal("AB"),
			H:           r.intVal("H"),
			HR:          r.intVal("HR"),
			RBI:         r.intVal("RBI"),
			SB:          r.intVal("SB"),
			BB:          r.intVal("BB"),
			HBP:         r.intVal("HBP"),
			SO:          r.intVal("SO"),
			ReportedOBP: r.floatVal("OBP"),
			ReportedSLG: r.floatVal("SLG"),
		}
		if detailed {
			b.Detail = &stats.BattingDetail{
				Doubles: r.intVal("2B"),
				Triples: r.intVal("3B"),
				SF:      r.intVal("SF"),
				R:       r.intVal("R"),
			}
		}
		out = append(out, b)
	})
	if err != nil {
		return nil, err
	}
	return dedupe(out, func(b stats.BatterSeason) key { return key{b.Player, b.Year} }), nil
}

// ReadPitchers reads a pitching table. IP uses thirds notation.
func ReadPitchers(src io.Reader) ([]stats.PitcherSeason, error) {
	var out []stats.PitcherSeason
	err := readRows(src, "pitchers", pitcherRequired, nil, func(r row) {
		if r.str("player") == "" {
			return
		}
		out = append(out, stats.PitcherSeason{
			Player: r.str("player"),
			Team:   r.str("team"),
			Year:   r.intVal("year"),
			IP:     stats.ParseInnings(r.str("IP")),
			W:      r.intVal("W"),
			L:      r.intVal("L"),
			SV:     r.intVal("SV"),
			HLD:    r.intVal("HLD"),
			BF:     r.intVal("BF"),
			HA:     r.intVal("HA"),
			HRA:    r.intVal("HRA"),
			BB:     r.intVal("BB"),
			HBP:    r.intVal("HBP"),
			SO:     r.intVal("SO"),
			R:      r.intVal("R"),
			ER:     r.intVal("ER"),
		})
	})
	if err != nil {
		return nil, err
	}
	return dedupe(out, func(p stats.PitcherSeason) key { return key{p.Player, p.Year} }), nil
}

// ReadStandings reads team season records. Rows missing RS or RA are
// skipped.
func ReadStandings(src io.Reader) ([]stats.TeamSeason, error) {
	var out []stats.TeamSeason
	err := readRows(src, "standings", standingRequired, nil, func(r row) {
		if r.str("team") == "" || r.blank("RS", "RA") {
			return
		}
		out = append(out, stats.TeamSeason{
			Team:   r.str("team"),
			League: r.str("league"),
			Year:   r.intVal("year"),
			G:      r.intVal("G"),
			W:      r.intVal("W"),
			L:      r.intVal("L"),
			D:      r.intVal("D"),
			RS:     r.floatVal("RS"),
			RA:     r.floatVal("RA"),
		})
	})
	if err != nil {
		return nil, err
	}
	return dedupe(out, func(t stats.TeamSeason) key { return key{t.Team, t.Year} }), nil
}

// --------------------------------------------------------------------------
// People
// --------------------------------------------------------------------------

var birthdayLayouts = []string{"2006-01-02", "2006/01/02", "2006-01-02 15:04:05", "2006/1/2"}

// ReadBirthdays reads player,birthday. Unparseable dates are dropped.
func ReadBirthdays(src io.Reader) (stats.Birthdays, error) {
	out := make(stats.Birthdays)
	err := readRows(src, "birthdays", []string{"player", "birthday"}, nil, func(r row) {
		name := r.str("player")
		if name == "" {
			return
		}
		if t, ok := parseDate(r.str("birthday")); ok {
			out[name] = t
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReadRoster reads year,team,player registrations.
func ReadRoster(src io.Reader) (stats.Roster, error) {
	out := make(stats.Roster)
	err := readRows(src, "rosters", []string{"year", "team", "player"}, nil, func(r row) {
		if r.str("player") == "" || r.str("team") == "" {
			return
		}
		out.Add(r.intVal("year"), r.str("team"), r.str("player"))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Dedupe
// --------------------------------------------------------------------------

type key struct {
	name string
	year int
}

// dedupe keeps the last row per key, in first-seen order.
func dedupe[T any](rows []T, keyOf func(T) key) []T {
	pos := make(map[key]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := keyOf(r)
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}
