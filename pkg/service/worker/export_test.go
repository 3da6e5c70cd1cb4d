package worker

import "context"

// Poll is exported for testing
func (w *EscalationAlertWorker) Poll(ctx context.Context) {
	w.poll(ctx)
}
