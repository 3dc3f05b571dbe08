package stats

import (
	"strconv"
	"strings"
)

// ParseInnings converts box-score innings notation to a true decimal. The
// fractional digit counts outs, so "123.1" is 123⅓ and "123.2" is 123⅔.
// Anything unparseable yields 0 so a single bad row cannot abort a
// league-wide run.
func ParseInnings(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	whole, frac, found := strings.Cut(s, ".")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return 0
		}
		return f
	}
	w, err := strconv.Atoi(whole)
	if err != nil || w < 0 {
		return 0
	}
	outs, err := strconv.Atoi(frac)
	if err != nil || outs < 0 || outs > 2 {
		return 0
	}
	return float64(w) + float64(outs)/3.0
}

// FormatInnings renders a decimal inning count back in box-score notation.
func FormatInnings(ip float64) string {
	if ip <= 0 {
		return "0.0"
	}
	outs := int(ip*3 + 0.5)
	return strconv.Itoa(outs/3) + "." + strconv.Itoa(outs%3)
}
