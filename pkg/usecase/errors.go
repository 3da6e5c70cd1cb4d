package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrPatientNotFound    = errors.New("patient not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUnknownSubmission  = errors.New("submission is not part of the selected patient")
	ErrNoSelection        = errors.New("no patient selected")

	// Annotation errors
	ErrNotEditable      = errors.New("submission does not take actions")
	ErrAnnotationLocked = errors.New("submission annotation is already completed")

	// Selection errors
	ErrStaleSelection = errors.New("selection was superseded by a newer one")
)

// Context keys for error values
const (
	PatientIDKey    = "patient_id"
	SubmissionIDKey = "submission_id"
)
