// Command project builds NPB projections from the raw season tables.
//
// Usage:
//
//	npb-project batters
//	npb-project pitchers --target 2026
//	npb-project saber
//	npb-project pythag
//	npb-project standings --data-dir data/raw --out data/projections
//	npb-project backtest --from 2018 --to 2025
//	npb-project publish
//	npb-project all
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/db"
	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/store"
	"github.com/albapepper/npb-projections/internal/table"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Persistent flags shared by every subcommand.
var (
	flagTarget  int
	flagDataDir string
	flagOut     string
	flagModel   string
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "npb-project",
		Short: "NPB projection pipeline",
	}
	root.PersistentFlags().IntVar(&flagTarget, "target", 0, "Season to project (default: NPB_DATA_END_YEAR+1)")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Raw data directory (default: NPB_DATA_DIR)")
	root.PersistentFlags().StringVar(&flagOut, "out", "", "Output directory (default: NPB_OUTPUT_DIR)")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "Model parameter YAML (default: MODEL_PARAMS_FILE)")

	root.AddCommand(battersCmd())
	root.AddCommand(pitchersCmd())
	root.AddCommand(saberCmd())
	root.AddCommand(pythagCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(backtestCmd())
	root.AddCommand(publishCmd())
	root.AddCommand(allCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// env is everything a subcommand needs after flags and configuration are
// resolved.
type env struct {
	cfg      *config.Config
	model    config.Model
	ds       *table.Dataset
	pipeline *forecast.Pipeline
	target   int
	out      string
}

func (e *env) path(name string) string { return filepath.Join(e.out, name) }

func (e *env) snapshot() (*forecast.Snapshot, error) {
	return forecast.Build(e.pipeline, e.ds, e.target, logger)
}

// run resolves configuration, loads the data directory and hands the result
// to fn with a context cancelled on interrupt.
func run(fn func(ctx context.Context, e *env) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagOut != "" {
		cfg.OutputDir = flagOut
	}
	if flagModel != "" {
		cfg.ModelFile = flagModel
	}
	target := cfg.TargetYear()
	if flagTarget != 0 {
		target = flagTarget
	}

	model, err := config.LoadModel(cfg.ModelFile)
	if err != nil {
		return err
	}

	start := time.Now()
	ds, err := table.LoadDir(cfg.DataDir)
	if err != nil {
		return err
	}
	logger.Info("Data loaded",
		"dir", cfg.DataDir,
		"batter_rows", len(ds.Batters),
		"pitcher_rows", len(ds.Pitchers),
		"team_rows", len(ds.Standings),
		"duration", time.Since(start).Round(time.Millisecond))

	p, err := forecast.NewPipeline(model, ds.Birthdays, config.TeamRegistry, logger)
	if err != nil {
		return err
	}

	return fn(ctx, &env{cfg: cfg, model: model, ds: ds, pipeline: p, target: target, out: cfg.OutputDir})
}

// --------------------------------------------------------------------------
// Projection commands
// --------------------------------------------------------------------------

func battersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batters",
		Short: "Write Marcel batter projections and their value estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(_ context.Context, e *env) error {
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				return writeBatters(e, s)
			})
		},
	}
}

func pitchersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pitchers",
		Short: "Write Marcel pitcher projections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(_ context.Context, e *env) error {
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				return writePitchers(e, s)
			})
		},
	}
}

func saberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saber",
		Short: "Write per-season wOBA, wRC+ and wRAA for every batter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(_ context.Context, e *env) error {
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				return writeSaber(e, s)
			})
		},
	}
}

func pythagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pythag",
		Short: "Write Pythagorean records for every team season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(_ context.Context, e *env) error {
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				return writePythag(e, s)
			})
		},
	}
}

func standingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Write projected standings for the target season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(_ context.Context, e *env) error {
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				return writeStandings(e, s)
			})
		},
	}
}

func allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Write every projection table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(_ context.Context, e *env) error {
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				for _, write := range []func(*env, *forecast.Snapshot) error{
					writeBatters, writePitchers, writeSaber, writePythag, writeStandings,
				} {
					if err := write(e, s); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func writeBatters(e *env, s *forecast.Snapshot) error {
	if err := writeTable(e.path(fmt.Sprintf("marcel_batters_%d.csv", s.Target)), func(w *table.Writer) error {
		return w.Projections(marcel.Batter, s.Batters)
	}); err != nil {
		return err
	}
	return writeTable(e.path(fmt.Sprintf("batter_values_%d.csv", s.Target)), func(w *table.Writer) error {
		return w.ProjectedValues(s.Batters, s.BatterValues)
	})
}

func writePitchers(e *env, s *forecast.Snapshot) error {
	return writeTable(e.path(fmt.Sprintf("marcel_pitchers_%d.csv", s.Target)), func(w *table.Writer) error {
		return w.Projections(marcel.Pitcher, s.Pitchers)
	})
}

func writeSaber(e *env, s *forecast.Snapshot) error {
	if c := s.Correlation; c != nil {
		logger.Info("wOBA correlation", "n", c.N, "min_pa", c.MinPA,
			"slg", fmt.Sprintf("%.3f", c.SLG), "obp", fmt.Sprintf("%.3f", c.OBP))
	}
	return writeTable(e.path("sabermetrics.csv"), func(w *table.Writer) error {
		return w.SeasonValues(s.SeasonValues)
	})
}

func writePythag(e *env, s *forecast.Snapshot) error {
	for _, a := range s.Accuracy {
		if a.Year != 0 {
			continue
		}
		logger.Info("Pythagorean accuracy",
			"exponent", a.Exponent,
			"n", a.N,
			"mae", fmt.Sprintf("%.2f", a.MAE),
			"rmse", fmt.Sprintf("%.2f", a.RMSE))
	}
	return writeTable(e.path("pythagorean.csv"), func(w *table.Writer) error {
		return w.Records(s.Records)
	})
}

func writeStandings(e *env, s *forecast.Snapshot) error {
	if s.Standings == nil {
		logger.Warn("No projected standings to write", "target", s.Target)
		return nil
	}
	for _, t := range s.Standings {
		logger.Info("Projected",
			"league", t.League,
			"rank", t.Rank,
			"team", t.Team,
			"wins", fmt.Sprintf("%.1f", t.Wins),
			"losses", fmt.Sprintf("%.1f", t.Losses))
	}
	return writeTable(e.path(fmt.Sprintf("projected_standings_%d.csv", s.Target)), func(w *table.Writer) error {
		return w.Standings(s.Standings)
	})
}

func writeTable(path string, fn func(*table.Writer) error) error {
	if err := table.WriteFile(path, fn); err != nil {
		return err
	}
	logger.Info("Wrote", "path", path)
	return nil
}

// --------------------------------------------------------------------------
// backtest command
// --------------------------------------------------------------------------

func backtestCmd() *cobra.Command {
	var from, to, workers int

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay past seasons and score projections against actuals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *env) error {
				first, last := e.model.Backtest.FirstYear, e.cfg.DataEndYear
				if from != 0 {
					first = from
				}
				if to != 0 {
					last = to
				}
				if first > last {
					return fmt.Errorf("backtest range %d-%d is empty", first, last)
				}
				if workers > 0 {
					e.model.Backtest.Workers = workers
					p, err := forecast.NewPipeline(e.model, e.ds.Birthdays, config.TeamRegistry, logger)
					if err != nil {
						return err
					}
					e.pipeline = p
				}

				years := make([]int, 0, last-first+1)
				for y := first; y <= last; y++ {
					years = append(years, y)
				}

				start := time.Now()
				res, err := e.pipeline.Backtest(ctx, e.ds, years)
				if err != nil {
					return err
				}
				for _, r := range res.Players {
					logger.Info("Player backtest", "year", r.Target, "summary", r.Summary())
				}
				for _, r := range res.Teams {
					logger.Info("Team backtest",
						"year", r.Target,
						"teams", r.N,
						"mae", fmt.Sprintf("%.2f", r.MAE),
						"rmse", fmt.Sprintf("%.2f", r.RMSE))
				}
				logger.Info("Backtest complete",
					"years", len(years),
					"duration", time.Since(start).Round(time.Millisecond))

				if err := writeTable(e.path("backtest_players.csv"), func(w *table.Writer) error {
					return w.Metrics(res.Players)
				}); err != nil {
					return err
				}
				return writeTable(e.path("backtest_teams.csv"), func(w *table.Writer) error {
					return w.TeamBacktest(res.Teams)
				})
			})
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "First season to replay (default: backtest.first_year)")
	cmd.Flags().IntVar(&to, "to", 0, "Last season to replay (default: NPB_DATA_END_YEAR)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Seasons replayed concurrently (default: backtest.workers)")
	return cmd
}

// --------------------------------------------------------------------------
// publish command
// --------------------------------------------------------------------------

func publishCmd() *cobra.Command {
	var skipSchema bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build the snapshot and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *env) error {
				pool, err := db.New(ctx, e.cfg)
				if err != nil {
					return fmt.Errorf("database: %w", err)
				}
				defer pool.Close()

				if !skipSchema {
					if err := store.EnsureSchema(ctx, pool); err != nil {
						return err
					}
				}
				s, err := e.snapshot()
				if err != nil {
					return err
				}
				res, err := store.Publish(ctx, pool, s, logger)
				if err != nil {
					return err
				}
				fmt.Printf("Published %d: %s\n", res.Target, res.Summary())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipSchema, "skip-schema", false, "Do not create missing output tables")
	return cmd
}

// Compile-time check that the pool satisfies the publisher.
var _ store.Conn = (*db.Pool)(nil)
