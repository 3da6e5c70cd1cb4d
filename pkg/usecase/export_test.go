package usecase

import "github.com/oncowatch/oncowatch/pkg/domain/model"

// NotesPending is exported for testing
func NotesPending(w *AnnotationWorkflow, id model.SubmissionID) bool {
	return w.notes.Pending(id)
}
