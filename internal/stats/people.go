package stats

import "time"

// OpeningMonth and OpeningDay fix the reference date ages are computed at.
const (
	OpeningMonth = time.April
	OpeningDay   = 1
)

// Birthdays maps player identity to birth date. Missing players are valid.
type Birthdays map[string]time.Time

// AgeAt returns the player's whole-year age on opening day of targetYear.
// ok is false when the registry has no entry.
func (b Birthdays) AgeAt(player string, targetYear int) (age int, ok bool) {
	birth, found := b[player]
	if !found || birth.IsZero() {
		return 0, false
	}
	return AgeOn(birth, targetYear), true
}

// AgeOn computes age in whole years on April 1 of targetYear.
func AgeOn(birth time.Time, targetYear int) int {
	age := targetYear - birth.Year()
	if OpeningMonth < birth.Month() || (OpeningMonth == birth.Month() && OpeningDay < birth.Day()) {
		age--
	}
	return age
}

// Roster lists registered players per (year, team).
type Roster map[int]map[string][]string

// Add registers player on team for year.
func (r Roster) Add(year int, team, player string) {
	if r[year] == nil {
		r[year] = make(map[string][]string)
	}
	r[year][team] = append(r[year][team], player)
}

// Teams returns the team → players map for year, nil when absent.
func (r Roster) Teams(year int) map[string][]string {
	return r[year]
}

// Has reports whether any roster was loaded for year.
func (r Roster) Has(year int) bool {
	return len(r[year]) > 0
}
