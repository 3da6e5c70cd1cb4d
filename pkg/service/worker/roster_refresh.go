package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// RosterLoader rebuilds and publishes the roster snapshot
type RosterLoader interface {
	Load(ctx context.Context) (*model.RosterSnapshot, error)
}

// RosterRefreshWorker keeps the published roster snapshot fresh
//
// Architecture assumptions:
// - Every replica refreshes on its own; the last published snapshot wins
// - A failed refresh keeps the previously published snapshot
type RosterRefreshWorker struct {
	roster   RosterLoader
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRosterRefreshWorker creates a new worker for refreshing the roster
func NewRosterRefreshWorker(roster RosterLoader, interval time.Duration) *RosterRefreshWorker {
	return &RosterRefreshWorker{
		roster:   roster,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop
// - Initial load and periodic refresh both run in a background goroutine
// - Does not block server startup
func (w *RosterRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("Roster refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *RosterRefreshWorker) Stop() {
	logging.Default().Info("Roster refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Roster refresh worker stopped")
}

func (w *RosterRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.refresh(ctx); err != nil {
		logging.Default().Error("Initial roster refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				logging.Default().Error("Roster refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Roster refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Roster refresh worker context cancelled")
			return
		}
	}
}

func (w *RosterRefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()

	snapshot, err := w.roster.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load roster")
	}

	degraded := 0
	for _, e := range snapshot.Entries {
		if e.Degraded {
			degraded++
		}
	}

	logging.Default().Info("Roster refresh completed",
		"patients", len(snapshot.Entries),
		"degraded", degraded,
		"duration", time.Since(startTime).String())

	return nil
}
