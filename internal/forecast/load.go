package forecast

import (
	"log/slog"

	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/table"
)

// Load reads the data directory, builds a pipeline with its birthdays and
// returns the snapshot for target.
func Load(dir string, model config.Model, target int, logger *slog.Logger) (*Snapshot, error) {
	ds, err := table.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	p, err := NewPipeline(model, ds.Birthdays, config.TeamRegistry, logger)
	if err != nil {
		return nil, err
	}
	return Build(p, ds, target, logger)
}
