package workers

import (
	"context"
	"log/slog"
	"time"
)

// Syncer exposes one reconciliation step of the playback synchronizer.
type Syncer interface {
	SyncTick()
}

// DriftWorker drives follower-side drift correction: on a fixed cadence it
// asks the synchronizer to compare the local playback position with the
// last known authoritative time. It is bound to the session context, so
// leaving the room stops it deterministically.
type DriftWorker struct {
	log      *slog.Logger
	syncer   Syncer
	interval time.Duration
}

func NewDriftWorker(log *slog.Logger, syncer Syncer, interval time.Duration) *DriftWorker {
	return &DriftWorker{log: log, syncer: syncer, interval: interval}
}

func (w *DriftWorker) Run(ctx context.Context) error {
	w.log.Info("Starting drift correction", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping drift correction")
			return nil
		case <-ticker.C:
			w.syncer.SyncTick()
		}
	}
}
