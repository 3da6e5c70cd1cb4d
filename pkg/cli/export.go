package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/cli/config"
	"github.com/oncowatch/oncowatch/pkg/service/storage"
	"github.com/oncowatch/oncowatch/pkg/service/workbook"
	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
	"github.com/oncowatch/oncowatch/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var output string
	var appCfg config.AppConfig
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file path or gs://bucket/object (default: patient_data_<date>.xlsx)",
			Sources:     cli.EnvVars("ONCOWATCH_EXPORT_OUTPUT"),
			Destination: &output,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export roster and submissions to an xlsx workbook",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dashCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load dashboard configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			loc, err := dashCfg.Location()
			if err != nil {
				return err
			}
			uc := usecase.New(repo,
				usecase.WithRosterConcurrency(dashCfg.Dashboard.RosterConcurrency),
				usecase.WithLocation(loc),
			)

			return runExport(ctx, uc.Export, output)
		},
	}
}

// runExport builds the workbook and writes it to a local path or a
// Cloud Storage object
func runExport(ctx context.Context, uc *usecase.ExportUseCase, output string) error {
	export, err := uc.Build(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to build export")
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf, export); err != nil {
		return goerr.Wrap(err, "failed to render workbook")
	}

	if output == "" {
		output = usecase.FileName(export.GeneratedAt)
	}

	gcsLoc, isGCS, err := storage.ParseLocation(output)
	if err != nil {
		return goerr.Wrap(err, "invalid export output", goerr.V("output", output))
	}

	if isGCS {
		client, err := storage.New(ctx)
		if err != nil {
			return err
		}
		defer safe.Close(ctx, client)

		if err := client.Upload(ctx, gcsLoc, storage.XLSXContentType, &buf); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, buf.Bytes(), 0o600); err != nil {
		return goerr.Wrap(err, "failed to write export file", goerr.V("path", output))
	}

	logging.From(ctx).Info("Export written",
		"output", output,
		"patients", len(export.Patients),
		"submissions", len(export.Submissions),
	)
	return nil
}
