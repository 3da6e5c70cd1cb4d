package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

// DetailUseCase loads everything a patient detail view needs
type DetailUseCase struct {
	repo          interfaces.Repository
	notesDebounce time.Duration
	clock         func() time.Time
}

func NewDetailUseCase(repo interfaces.Repository, notesDebounce time.Duration, clock func() time.Time) *DetailUseCase {
	return &DetailUseCase{
		repo:          repo,
		notesDebounce: notesDebounce,
		clock:         clock,
	}
}

// Load fetches the patient and their whole submission history concurrently
func (uc *DetailUseCase) Load(ctx context.Context, patientID model.PatientID) (*model.Patient, []*model.Submission, error) {
	var (
		patient     *model.Patient
		submissions []*model.Submission
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p, err := uc.repo.Patient().Get(ctx, patientID)
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrPatientNotFound, "patient not found", goerr.V(PatientIDKey, patientID))
		}
		if err != nil {
			return goerr.Wrap(err, "failed to get patient", goerr.V(PatientIDKey, patientID))
		}
		patient = p
		return nil
	})
	eg.Go(func() error {
		subs, err := uc.repo.Submission().ListByPatient(ctx, patientID)
		if err != nil {
			return goerr.Wrap(err, "failed to list submissions", goerr.V(PatientIDKey, patientID))
		}
		submissions = subs
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	return patient, submissions, nil
}

// NewWorkflow starts an annotation workflow over submissions
func (uc *DetailUseCase) NewWorkflow(submissions []*model.Submission) *AnnotationWorkflow {
	return NewAnnotationWorkflow(uc.repo.Submission(), submissions, uc.notesDebounce, uc.clock)
}

// Now is the clock detail views are computed against
func (uc *DetailUseCase) Now() time.Time {
	return uc.clock()
}
