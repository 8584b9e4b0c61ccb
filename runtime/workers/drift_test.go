package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	ticks atomic.Int32
}

func (c *countingSyncer) SyncTick() {
	c.ticks.Add(1)
}

func TestDriftWorker_TicksUntilCancelled(t *testing.T) {
	req := require.New(t)
	syncer := &countingSyncer{}
	worker := NewDriftWorker(slog.Default(), syncer, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	req.Eventually(func() bool {
		return syncer.ticks.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		// cancellation is a clean stop, never a crash to restart
		req.NoError(err)
	case <-time.After(500 * time.Millisecond):
		req.Fail("DriftWorker should stop on context cancellation")
	}
}
