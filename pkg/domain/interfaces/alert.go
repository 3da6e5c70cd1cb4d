package interfaces

import (
	"context"

	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

// AlertNotifier publishes escalations to clinicians outside the dashboard
type AlertNotifier interface {
	NotifyEscalation(ctx context.Context, n *model.Notification) error
}
