package table

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/albapepper/npb-projections/internal/stats"
)

// Conventional file names inside a data directory.
const (
	BattersFile   = "batters.csv"
	PitchersFile  = "pitchers.csv"
	StandingsFile = "standings.csv"
	BirthdaysFile = "birthdays.csv"
	RostersFile   = "rosters.csv"
)

// Dataset is every input table, loaded once and treated as read only.
type Dataset struct {
	Batters   []stats.BatterSeason
	Pitchers  []stats.PitcherSeason
	Standings []stats.TeamSeason
	Birthdays stats.Birthdays
	Roster    stats.Roster
}

// LoadDir reads the conventional file set. Batters, pitchers and standings
// are required; birthdays and rosters are optional.
func LoadDir(dir string) (*Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	if ds.Batters, err = readFile(dir, BattersFile, true, ReadBatters); err != nil {
		return nil, err
	}
	if ds.Pitchers, err = readFile(dir, PitchersFile, true, ReadPitchers); err != nil {
		return nil, err
	}
	if ds.Standings, err = readFile(dir, StandingsFile, true, ReadStandings); err != nil {
		return nil, err
	}
	if ds.Birthdays, err = readFile(dir, BirthdaysFile, false, ReadBirthdays); err != nil {
		return nil, err
	}
	if ds.Roster, err = readFile(dir, RostersFile, false, ReadRoster); err != nil {
		return nil, err
	}
	return &ds, nil
}

func readFile[T any](dir, name string, required bool, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	path := filepath.Join(dir, name)
	fh, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return zero, nil
		}
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	v, err := read(fh)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}
	return v, nil
}

// WriteFile creates path and hands a Writer to fn.
func WriteFile(path string, fn func(*Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := NewWriter(fh)
	if err := fn(w); err != nil {
		fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		fh.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return fh.Close()
}
