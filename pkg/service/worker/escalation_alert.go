package worker

import (
	"context"
	"sync"
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/utils/errutil"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// NotificationLister lists escalations still awaiting action
type NotificationLister interface {
	List(ctx context.Context) ([]*model.Notification, error)
}

// EscalationAlertWorker posts each new unactioned escalation once.
// Posted submission IDs are remembered for the process lifetime only, so a
// restart posts the escalations inside the lookback again.
type EscalationAlertWorker struct {
	notifications NotificationLister
	notifier      interfaces.AlertNotifier
	interval      time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}

	mu     sync.Mutex
	posted map[model.SubmissionID]struct{}
}

// NewEscalationAlertWorker creates a new worker for escalation alerts
func NewEscalationAlertWorker(notifications NotificationLister, notifier interfaces.AlertNotifier, interval time.Duration) *EscalationAlertWorker {
	return &EscalationAlertWorker{
		notifications: notifications,
		notifier:      notifier,
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		posted:        make(map[model.SubmissionID]struct{}),
	}
}

// Start begins the background polling loop
func (w *EscalationAlertWorker) Start(ctx context.Context) error {
	logging.Default().Info("Escalation alert worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *EscalationAlertWorker) Stop() {
	logging.Default().Info("Escalation alert worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Escalation alert worker stopped")
}

func (w *EscalationAlertWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// poll posts every escalation not posted yet. A failed post is retried on
// the next poll.
func (w *EscalationAlertWorker) poll(ctx context.Context) {
	notifications, err := w.notifications.List(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to list escalations for alerting")
		return
	}

	sent := 0
	// oldest first so the channel reads chronologically
	for i := len(notifications) - 1; i >= 0; i-- {
		n := notifications[i]
		if w.wasPosted(n.SubmissionID) {
			continue
		}

		if err := w.notifier.NotifyEscalation(ctx, n); err != nil {
			_ = errutil.Handle(ctx, err, "failed to post escalation alert")
			continue
		}
		w.markPosted(n.SubmissionID)
		sent++
	}

	if sent > 0 {
		logging.Default().Info("Escalation alerts posted", "count", sent)
	}
}

func (w *EscalationAlertWorker) wasPosted(id model.SubmissionID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.posted[id]
	return ok
}

func (w *EscalationAlertWorker) markPosted(id model.SubmissionID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.posted[id] = struct{}{}
}
