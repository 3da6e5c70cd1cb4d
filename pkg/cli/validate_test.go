package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/cli"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/usecase"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := writeFile(t, "config.toml", `
[dashboard]
notes_debounce = "300ms"
timezone = "Europe/London"

[[cancer_type]]
id = "breast"
name = "Breast"
`)

	// Run validate command with only config (no DB check)
	err := cli.Run(context.Background(), []string{"oncowatch", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_NoConfig(t *testing.T) {
	err := cli.Run(context.Background(), []string{"oncowatch", "validate"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, "config.toml", `
[dashboard]
roster_concurrency = 0
`)

	err := cli.Run(context.Background(), []string{"oncowatch", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.toml")

	err := cli.Run(context.Background(), []string{"oncowatch", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_DBCheckWithMemory(t *testing.T) {
	// Empty memory DB has nothing to report
	err := cli.Run(context.Background(), []string{
		"oncowatch", "validate",
		"--check-db",
		"--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestPrintValidationSummary(t *testing.T) {
	color.NoColor = true

	t.Run("issues are listed", func(t *testing.T) {
		var buf bytes.Buffer
		cli.PrintValidationSummary(&buf, &usecase.ValidationResult{
			Scanned: 3,
			Issues: []model.ConsistencyIssue{
				{SubmissionID: "s-1", PatientID: "p-1", Message: `duplicate symptom "Pain"`},
			},
		})

		out := buf.String()
		gt.S(t, out).Contains("s-1 (patient p-1) duplicate symptom \"Pain\"")
		gt.S(t, out).Contains("1 issue(s) in 3 submission(s) scanned")
	})

	t.Run("clean result", func(t *testing.T) {
		var buf bytes.Buffer
		cli.PrintValidationSummary(&buf, &usecase.ValidationResult{Scanned: 5})
		gt.S(t, buf.String()).Contains("5 submission(s) scanned, no issues")
	})
}
