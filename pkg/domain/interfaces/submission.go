package interfaces

import (
	"context"
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

// SubmissionRepository defines the interface for symptom submission access
type SubmissionRepository interface {
	// GetLatest returns the patient's most recent submission, or nil, nil if
	// the patient has none
	GetLatest(ctx context.Context, patientID model.PatientID) (*model.Submission, error)

	// ListByPatient returns all of the patient's submissions, oldest first
	ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Submission, error)

	// ListEscalations returns Red and Hard Red submissions at or after since,
	// newest first
	ListEscalations(ctx context.Context, since time.Time) ([]*model.Submission, error)

	// Get retrieves a submission by ID
	Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error)

	// Put creates or replaces a submission
	Put(ctx context.Context, submission *model.Submission) error

	// UpdateAnnotation writes only action_taken, notes and
	// action_taken_timestamp of an existing submission
	UpdateAnnotation(ctx context.Context, id model.SubmissionID, update *model.AnnotationUpdate) error

	// Count counts submissions matching all given options
	Count(ctx context.Context, opts ...CountSubmissionOption) (int64, error)

	// Scan calls fn for every stored submission. Iteration stops at the first
	// error returned by fn.
	Scan(ctx context.Context, fn func(*model.Submission) error) error
}
