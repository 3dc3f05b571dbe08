// Package maintenance runs periodic background tasks as Go tickers.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Task is one periodic job. A zero or negative Every disables it.
type Task struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Start launches all enabled tasks. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, tasks []Task, logger *slog.Logger) {
	tickers := make([]*time.Ticker, 0, len(tasks))
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	for _, task := range tasks {
		if task.Every <= 0 {
			logger.Info("Maintenance task disabled", "task", task.Name)
			continue
		}
		t := time.NewTicker(task.Every)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, task, logger)
		logger.Info("Maintenance task started", "task", task.Name, "every", task.Every)
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, task Task, logger *slog.Logger) {
	for {
		select {
		case <-ch:
			start := time.Now()
			if err := task.Run(ctx); err != nil {
				logger.Warn("Maintenance task failed",
					"task", task.Name,
					"duration", time.Since(start).Round(time.Millisecond),
					"error", err)
				continue
			}
			logger.Info("Maintenance task complete",
				"task", task.Name,
				"duration", time.Since(start).Round(time.Millisecond))
		case <-ctx.Done():
			return
		}
	}
}
