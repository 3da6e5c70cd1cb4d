package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ExportDateLayout formats every date cell of an export
const ExportDateLayout = "2006-01-02 15:04"

type ExportUseCase struct {
	repo     interfaces.Repository
	roster   *RosterUseCase
	location *time.Location
	clock    func() time.Time
}

func NewExportUseCase(repo interfaces.Repository, roster *RosterUseCase, location *time.Location, clock func() time.Time) *ExportUseCase {
	return &ExportUseCase{
		repo:     repo,
		roster:   roster,
		location: location,
		clock:    clock,
	}
}

// FileName is the download name of a workbook generated at t
func FileName(t time.Time) string {
	return fmt.Sprintf("patient_data_%s.xlsx", t.Format("2006-01-02"))
}

// FormatSymptoms flattens symptoms into one cell
func FormatSymptoms(symptoms []model.Symptom) string {
	parts := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		if sym.Temperature != nil {
			parts = append(parts, fmt.Sprintf("%s (Severity: %d, Temperature: %s)",
				sym.Name, sym.Severity, strconv.FormatFloat(*sym.Temperature, 'f', -1, 64)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (Severity: %d)", sym.Name, sym.Severity))
	}
	return strings.Join(parts, ", ")
}

func (uc *ExportUseCase) formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return types.NotAvailable
	}
	return t.In(uc.location).Format(ExportDateLayout)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return types.NotAvailable
	}
	return s
}

// Build flattens a fresh roster and every patient's submissions. A patient
// whose history cannot be read contributes no submission rows.
func (uc *ExportUseCase) Build(ctx context.Context) (*model.Export, error) {
	snapshot, err := uc.roster.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load roster for export")
	}

	histories := make([][]*model.Submission, len(snapshot.Entries))

	var eg errgroup.Group
	eg.SetLimit(uc.roster.concurrency)
	for i, e := range snapshot.Entries {
		eg.Go(func() error {
			subs, err := uc.repo.Submission().ListByPatient(ctx, e.ID)
			if err != nil {
				logging.From(ctx).Warn("skipping patient submissions in export",
					"patient_id", e.ID,
					"error", err.Error(),
				)
				return nil
			}
			histories[i] = subs
			return nil
		})
	}
	_ = eg.Wait()

	export := &model.Export{
		Submissions: []model.ExportSubmissionRow{},
		Patients:    make([]model.ExportPatientRow, 0, len(snapshot.Entries)),
		GeneratedAt: uc.clock(),
	}

	for i, e := range snapshot.Entries {
		studyID := e.StudyID()
		export.Patients = append(export.Patients, model.ExportPatientRow{
			StudyID:            studyID,
			CancerType:         orNA(e.CancerType),
			TriageLevel:        e.TriageLevel.Label(),
			LastSubmissionDate: uc.formatDate(e.LastSubmissionDate),
		})

		for _, s := range histories[i] {
			ts := s.Timestamp
			export.Submissions = append(export.Submissions, model.ExportSubmissionRow{
				StudyID:        studyID,
				SubmissionDate: uc.formatDate(&ts),
				TriageLevel:    s.TriageLevel.Label(),
				Symptoms:       FormatSymptoms(s.Symptoms),
				IsBaseline:     yesNo(s.IsBaseline),
				Notes:          s.Notes,
			})
		}
	}

	return export, nil
}
