package cli_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/xuri/excelize/v2"

	"github.com/oncowatch/oncowatch/pkg/cli"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/repository/memory"
	"github.com/oncowatch/oncowatch/pkg/service/workbook"
	"github.com/oncowatch/oncowatch/pkg/usecase"
)

func TestRunExport(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

	gt.NoError(t, repo.Patient().Put(ctx, &model.Patient{
		ID: "p-1", Role: types.UserRolePatient, DisplayName: "ONC_001", CancerType: "lung",
	})).Required()
	gt.NoError(t, repo.Submission().Put(ctx, &model.Submission{
		ID: "s-1", PatientID: "p-1", Timestamp: now.Add(-time.Hour), TriageLevel: types.TriageLevelAmber,
		Symptoms: []model.Symptom{{Name: "Cough", Severity: 2}},
	})).Required()

	uc := usecase.New(repo, usecase.WithClock(func() time.Time { return now }))

	t.Run("explicit path", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "out.xlsx")
		gt.NoError(t, cli.RunExport(ctx, uc.Export, output)).Required()

		f, err := excelize.OpenFile(output)
		gt.NoError(t, err).Required()
		defer f.Close()

		rows, err := f.GetRows(workbook.SubmissionsSheet)
		gt.NoError(t, err).Required()
		gt.A(t, rows).Length(2).Required()
		gt.V(t, rows[1][0]).Equal("ONC_001")
	})

	t.Run("default file name", func(t *testing.T) {
		t.Chdir(t.TempDir())
		gt.NoError(t, cli.RunExport(ctx, uc.Export, "")).Required()

		f, err := excelize.OpenFile("patient_data_2026-04-02.xlsx")
		gt.NoError(t, err).Required()
		defer f.Close()
	})

	t.Run("malformed bucket location", func(t *testing.T) {
		gt.Error(t, cli.RunExport(ctx, uc.Export, "gs://"))
	})
}
