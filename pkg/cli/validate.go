package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/cli/config"
	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
	"github.com/oncowatch/oncowatch/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// ErrConsistency is returned when stored submissions break data invariants
var ErrConsistency = goerr.New("DB consistency check found issues")

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Check stored submissions for consistency (implied by --firestore-project-id)",
		Sources:     cli.EnvVars("ONCOWATCH_CHECK_DB"),
		Destination: &checkDB,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration file and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load and validate configuration file
			dashCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"config", appCfg.Path(),
				"cancer_types", len(dashCfg.CancerTypes),
				"timezone", dashCfg.Dashboard.Timezone,
			)

			// Step 2: Run DB consistency check when a store is given
			if !checkDB && repoCfg.ProjectID() == "" {
				logger.Info("No repository specified, skipping DB consistency check")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			result, err := uc.ValidateDB(ctx)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			printValidationSummary(os.Stdout, result)
			if result.HasIssues() {
				return goerr.Wrap(ErrConsistency, "invalid submissions stored",
					goerr.V("issues", len(result.Issues)),
					goerr.V("scanned", result.Scanned))
			}

			logger.Info("DB consistency check passed", "scanned", result.Scanned)
			return nil
		},
	}
}

// printValidationSummary lists every issue followed by a one-line verdict
func printValidationSummary(w io.Writer, result *usecase.ValidationResult) {
	bad := color.New(color.FgRed, color.Bold)
	good := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)

	for _, issue := range result.Issues {
		_, _ = bad.Fprint(w, "✗ ")
		_, _ = fmt.Fprintf(w, "%s ", issue.SubmissionID)
		_, _ = dim.Fprintf(w, "(patient %s) ", issue.PatientID)
		_, _ = fmt.Fprintln(w, issue.Message)
	}

	if result.HasIssues() {
		_, _ = bad.Fprintf(w, "%d issue(s) in %d submission(s) scanned\n", len(result.Issues), result.Scanned)
		return
	}
	_, _ = good.Fprintf(w, "%d submission(s) scanned, no issues\n", result.Scanned)
}
