package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/utils/debounce"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// DefaultNotesDebounce is the quiet period before typed notes reach the draft
const DefaultNotesDebounce = 500 * time.Millisecond

// AnnotationWorkflow holds the local action and notes drafts of one patient's
// submissions. Drafts are seeded from persisted values and only reach the
// store on Save. A workflow belongs to a single selection and must be closed
// when the selection is replaced.
type AnnotationWorkflow struct {
	repo  interfaces.SubmissionRepository
	clock func() time.Time
	notes *debounce.Debouncer[model.SubmissionID, string]

	mu          sync.Mutex
	submissions []*model.Submission
	index       map[model.SubmissionID]*model.Submission
	drafts      map[model.SubmissionID]*model.Draft
	editor      map[model.SubmissionID]string
	saveErrors  map[model.SubmissionID]string
}

// NewAnnotationWorkflow seeds drafts from submissions. The workflow keeps its
// own copies so callers may reuse the slice.
func NewAnnotationWorkflow(repo interfaces.SubmissionRepository, submissions []*model.Submission, delay time.Duration, clock func() time.Time) *AnnotationWorkflow {
	if clock == nil {
		clock = time.Now
	}

	w := &AnnotationWorkflow{
		repo:        repo,
		clock:       clock,
		submissions: make([]*model.Submission, 0, len(submissions)),
		index:       make(map[model.SubmissionID]*model.Submission, len(submissions)),
		drafts:      make(map[model.SubmissionID]*model.Draft, len(submissions)),
		editor:      make(map[model.SubmissionID]string, len(submissions)),
		saveErrors:  make(map[model.SubmissionID]string),
	}
	w.notes = debounce.New(delay, w.propagateNotes)

	for _, s := range submissions {
		c := s.Clone()
		w.submissions = append(w.submissions, c)
		w.index[c.ID] = c
		w.drafts[c.ID] = &model.Draft{ActionTaken: c.ActionTaken, Notes: c.Notes}
		w.editor[c.ID] = c.Notes
	}

	return w
}

func (w *AnnotationWorkflow) propagateNotes(id model.SubmissionID, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if d, ok := w.drafts[id]; ok {
		d.Notes = text
	}
}

// editableLocked returns the submission if its annotation may still change.
// w.mu must be held.
func (w *AnnotationWorkflow) editableLocked(id model.SubmissionID) (*model.Submission, error) {
	s, ok := w.index[id]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownSubmission, "submission not in workflow", goerr.V(SubmissionIDKey, id))
	}
	switch model.AnnotationStateOf(s) {
	case model.AnnotationBaseline, model.AnnotationNotRequired:
		return nil, goerr.Wrap(ErrNotEditable, "submission has no action controls",
			goerr.V(SubmissionIDKey, id),
			goerr.V("triage_level", s.TriageLevel),
			goerr.V("is_baseline", s.IsBaseline))
	case model.AnnotationCompleted:
		return nil, goerr.Wrap(ErrAnnotationLocked, "submission annotation is read-only", goerr.V(SubmissionIDKey, id))
	}
	return s, nil
}

// SetActionTaken updates the local draft only
func (w *AnnotationWorkflow) SetActionTaken(id model.SubmissionID, taken bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.editableLocked(id); err != nil {
		return err
	}
	w.drafts[id].ActionTaken = taken
	return nil
}

// SetNotes records the editor text immediately and propagates it to the
// draft after the debounce quiet period. Only the last text of a burst is
// propagated.
func (w *AnnotationWorkflow) SetNotes(id model.SubmissionID, text string) error {
	w.mu.Lock()
	if _, err := w.editableLocked(id); err != nil {
		w.mu.Unlock()
		return err
	}
	w.editor[id] = text
	w.mu.Unlock()

	w.notes.Trigger(id, text)
	return nil
}

// Save commits the draft of one submission as a partial update of the
// annotation triple. On success the committed values are merged into the
// local submission. On failure the draft is kept and the error is recorded
// for the view. Saving an unchanged completed annotation again is a no-op.
func (w *AnnotationWorkflow) Save(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	// pending keystrokes belong to this save
	w.notes.Flush(id)

	w.mu.Lock()
	s, ok := w.index[id]
	if !ok {
		w.mu.Unlock()
		return nil, goerr.Wrap(ErrUnknownSubmission, "submission not in workflow", goerr.V(SubmissionIDKey, id))
	}
	draft := *w.drafts[id]
	if s.IsAnnotationComplete() && s.ActionTaken == draft.ActionTaken && s.Notes == draft.Notes {
		saved := s.Clone()
		w.mu.Unlock()
		return saved, nil
	}
	if _, err := w.editableLocked(id); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	update := &model.AnnotationUpdate{
		ActionTaken: draft.ActionTaken,
		Notes:       draft.Notes,
	}
	if draft.ActionTaken {
		if s.ActionTaken && s.ActionTakenAt != nil {
			t := *s.ActionTakenAt
			update.ActionTakenAt = &t
		} else {
			now := w.clock()
			update.ActionTakenAt = &now
		}
	}
	w.mu.Unlock()

	if err := w.repo.UpdateAnnotation(ctx, id, update); err != nil {
		w.mu.Lock()
		w.saveErrors[id] = err.Error()
		w.mu.Unlock()
		return nil, goerr.Wrap(err, "failed to save annotation", goerr.V(SubmissionIDKey, id))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s.ApplyAnnotation(update)
	delete(w.saveErrors, id)

	logging.From(ctx).Info("annotation saved",
		"submission_id", id,
		"action_taken", update.ActionTaken,
		"completed", s.IsAnnotationComplete(),
	)
	return s.Clone(), nil
}

// Draft returns the current draft of a submission
func (w *AnnotationWorkflow) Draft(id model.SubmissionID) (model.Draft, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, ok := w.drafts[id]
	if !ok {
		return model.Draft{}, false
	}
	return *d, true
}

// View returns the annotation view of one submission
func (w *AnnotationWorkflow) View(id model.SubmissionID) (*model.AnnotationView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.index[id]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownSubmission, "submission not in workflow", goerr.V(SubmissionIDKey, id))
	}
	return w.viewLocked(s), nil
}

// Views returns every submission's annotation view in chronological order
func (w *AnnotationWorkflow) Views() []*model.AnnotationView {
	w.mu.Lock()
	defer w.mu.Unlock()

	views := make([]*model.AnnotationView, 0, len(w.submissions))
	for _, s := range sortedByTimestamp(w.submissions) {
		views = append(views, w.viewLocked(s))
	}
	return views
}

func (w *AnnotationWorkflow) viewLocked(s *model.Submission) *model.AnnotationView {
	return &model.AnnotationView{
		Submission: s.Clone(),
		State:      model.AnnotationStateOf(s),
		Draft:      *w.drafts[s.ID],
		Editor:     w.editor[s.ID],
		SaveError:  w.saveErrors[s.ID],
	}
}

// Submissions returns copies of the submissions with committed annotations merged
func (w *AnnotationWorkflow) Submissions() []*model.Submission {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*model.Submission, len(w.submissions))
	for i, s := range w.submissions {
		out[i] = s.Clone()
	}
	return out
}

// Close cancels pending note propagation. A closed workflow never updates a
// draft again.
func (w *AnnotationWorkflow) Close() {
	w.notes.Close()
}
