package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/npb-projections/internal/forecast"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestReloadSwapsAndPublishes(t *testing.T) {
	var holder forecast.Holder
	var published atomic.Int32
	load := func(context.Context) (*forecast.Snapshot, error) { return &forecast.Snapshot{Target: 2026}, nil }
	publish := func(_ context.Context, s *forecast.Snapshot) error {
		assert.Equal(t, 2026, s.Target)
		published.Add(1)
		return nil
	}

	require.NoError(t, Reload(context.Background(), &holder, load, publish, quiet()))
	require.NotNil(t, holder.Load())
	assert.Equal(t, int32(1), published.Load())
}

func TestReloadFailureKeepsCurrentSnapshot(t *testing.T) {
	var holder forecast.Holder
	current := &forecast.Snapshot{Target: 2025}
	holder.Store(current)

	err := Reload(context.Background(), &holder, func(context.Context) (*forecast.Snapshot, error) {
		return nil, errors.New("missing batters.csv")
	}, nil, quiet())
	assert.Error(t, err)
	assert.Same(t, current, holder.Load())
}

func TestReloadPublishFailureStillSwaps(t *testing.T) {
	var holder forecast.Holder
	err := Reload(context.Background(), &holder,
		func(context.Context) (*forecast.Snapshot, error) { return &forecast.Snapshot{Target: 2026}, nil },
		func(context.Context, *forecast.Snapshot) error { return errors.New("db down") },
		quiet())
	assert.ErrorContains(t, err, "db down")
	require.NotNil(t, holder.Load())
	assert.Equal(t, 2026, holder.Load().Target)
}

func TestStartRunsTasksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	tasks := []Task{
		{Name: "tick", Every: 5 * time.Millisecond, Run: func(context.Context) error { runs.Add(1); return nil }},
		{Name: "off", Every: 0, Run: func(context.Context) error { t.Error("disabled task ran"); return nil }},
	}

	done := make(chan struct{})
	go func() {
		Start(ctx, tasks, quiet())
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
