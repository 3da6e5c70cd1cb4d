package slack

import (
	"context"

	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
)

// Service posts dashboard alerts to a Slack channel
type Service interface {
	interfaces.AlertNotifier

	// ChannelName resolves the alert channel name (with caching)
	// Used for startup logging and config validation
	ChannelName(ctx context.Context) (string, error)
}
