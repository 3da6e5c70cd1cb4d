package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/oncowatch/oncowatch/pkg/cli/config"
	httpctrl "github.com/oncowatch/oncowatch/pkg/controller/http"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/service/worker"
	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// useCaseOptions maps the dashboard file onto use case options
func useCaseOptions(cfg *config.DashboardConfig, cache interfaces.RosterCache) ([]usecase.Option, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	d := cfg.Dashboard
	return []usecase.Option{
		usecase.WithRosterCache(cache),
		usecase.WithNotesDebounce(d.NotesDebounce.Duration),
		usecase.WithRosterConcurrency(d.RosterConcurrency),
		usecase.WithEscalationLookback(d.EscalationLookback.Duration),
		usecase.WithLocation(loc),
	}, nil
}

func cmdServe() *cli.Command {
	var addr string
	var secureCookie bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var cacheCfg config.Cache
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ONCOWATCH_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Mark the session cookie Secure (enable behind TLS)",
			Sources:     cli.EnvVars("ONCOWATCH_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dashCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load dashboard configuration")
			}
			refreshInterval := dashCfg.Dashboard.RosterRefreshInterval.Duration

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Snapshots outlive one missed refresh
			cache, closeCache, err := cacheCfg.Configure(ctx, 2*refreshInterval)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize roster cache")
			}
			defer closeCache()

			ucOpts, err := useCaseOptions(dashCfg, cache)
			if err != nil {
				return err
			}
			uc := usecase.New(repo, ucOpts...)

			rosterWorker := worker.NewRosterRefreshWorker(uc.Roster, refreshInterval)
			if err := rosterWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start roster refresh worker")
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return err
			}

			var alertWorker *worker.EscalationAlertWorker
			if slackSvc != nil {
				alertWorker = worker.NewEscalationAlertWorker(uc.Notification, slackSvc, refreshInterval)
				if err := alertWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start escalation alert worker")
				}
				if name, err := slackSvc.ChannelName(ctx); err == nil {
					logging.Default().Info("Escalation alerts enabled", "slack", slackCfg, "channel_name", name)
				} else {
					logging.Default().Warn("Escalation alerts enabled, channel name unavailable", "slack", slackCfg, "error", err.Error())
				}
			} else {
				logging.Default().Info("Slack not configured, escalation alerts disabled")
			}

			httpHandler := httpctrl.New(uc,
				httpctrl.WithCancerTypes(dashCfg.ModelCancerTypes()),
				httpctrl.WithClinicianHeader(dashCfg.Dashboard.ClinicianHeader),
				httpctrl.WithSecureCookie(secureCookie),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			stopWorkers := func() {
				if alertWorker != nil {
					alertWorker.Stop()
				}
				rosterWorker.Stop()
			}

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				stopWorkers()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop workers first
				stopWorkers()

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
