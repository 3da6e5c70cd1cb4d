package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken     string
	alertChannel string
	dashboardURL string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for escalation alerts)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("ONCOWATCH_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-alert-channel",
			Usage:       "Slack channel ID receiving escalation alerts",
			Category:    "Slack",
			Destination: &x.alertChannel,
			Sources:     cli.EnvVars("ONCOWATCH_SLACK_ALERT_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "dashboard-url",
			Usage:       "Dashboard base URL linked from escalation alerts",
			Category:    "Slack",
			Destination: &x.dashboardURL,
			Sources:     cli.EnvVars("ONCOWATCH_DASHBOARD_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("alert-channel", x.alertChannel),
		slog.String("dashboard-url", x.dashboardURL),
	)
}

// IsConfigured reports whether escalation alerts can be posted
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.alertChannel != ""
}

// Configure creates the Slack alert service. It returns nil when alerts are
// not configured.
func (x *Slack) Configure() (slack.Service, error) {
	if !x.IsConfigured() {
		if x.botToken != "" || x.alertChannel != "" {
			return nil, goerr.New("both --slack-bot-token and --slack-alert-channel are required for escalation alerts")
		}
		return nil, nil
	}

	var opts []slack.Option
	if x.dashboardURL != "" {
		opts = append(opts, slack.WithDashboardURL(x.dashboardURL))
	}

	svc, err := slack.New(x.botToken, x.alertChannel, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
