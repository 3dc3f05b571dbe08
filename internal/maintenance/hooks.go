package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/npb-projections/internal/forecast"
)

// Loader builds a fresh snapshot.
type Loader func(ctx context.Context) (*forecast.Snapshot, error)

// Publisher persists a snapshot. May be nil.
type Publisher func(ctx context.Context, s *forecast.Snapshot) error

// Reload builds a snapshot, swaps it into holder and publishes it. A failed
// build leaves the current snapshot in place; a failed publish is reported
// after the swap.
func Reload(ctx context.Context, holder *forecast.Holder, load Loader, publish Publisher, logger *slog.Logger) error {
	s, err := load(ctx)
	if err != nil {
		return fmt.Errorf("reload snapshot: %w", err)
	}
	prev := holder.Load()
	holder.Store(s)
	if prev != nil {
		logger.Info("Snapshot replaced",
			"target", s.Target,
			"previous_built_at", prev.BuiltAt,
			"batters", len(s.Batters),
			"pitchers", len(s.Pitchers))
	} else {
		logger.Info("Snapshot loaded", "target", s.Target, "batters", len(s.Batters), "pitchers", len(s.Pitchers))
	}

	if publish == nil {
		return nil
	}
	if err := publish(ctx, s); err != nil {
		return fmt.Errorf("publish snapshot %d: %w", s.Target, err)
	}
	return nil
}

// ReloadTask wraps Reload as a periodic task.
func ReloadTask(every time.Duration, holder *forecast.Holder, load Loader, publish Publisher, logger *slog.Logger) Task {
	return Task{
		Name:  "reload",
		Every: every,
		Run: func(ctx context.Context) error {
			return Reload(ctx, holder, load, publish, logger)
		},
	}
}
