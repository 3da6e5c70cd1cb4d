package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/repository/memory"
	"github.com/oncowatch/oncowatch/pkg/usecase"
)

// failingSubmissions fails annotation writes while fail is set
type failingSubmissions struct {
	interfaces.SubmissionRepository
	mu   sync.Mutex
	fail bool
}

func (f *failingSubmissions) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *failingSubmissions) UpdateAnnotation(ctx context.Context, id model.SubmissionID, update *model.AnnotationUpdate) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return goerr.New("store unavailable")
	}
	return f.SubmissionRepository.UpdateAnnotation(ctx, id, update)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func annotationFixture() []*model.Submission {
	return []*model.Submission{
		{ID: "base", PatientID: "p-1", Timestamp: at(0), IsBaseline: true, TriageLevel: types.TriageLevelRed,
			Symptoms: []model.Symptom{sym("Pain", 1)}},
		{ID: "green", PatientID: "p-1", Timestamp: at(1), TriageLevel: types.TriageLevelGreen,
			Symptoms: []model.Symptom{sym("Pain", 0)}},
		{ID: "red", PatientID: "p-1", Timestamp: at(2), TriageLevel: types.TriageLevelRed,
			Symptoms: []model.Symptom{sym("Pain", 4)}},
		{ID: "amber", PatientID: "p-1", Timestamp: at(3), TriageLevel: types.TriageLevelAmber,
			Symptoms: []model.Symptom{sym("Nausea", 2)}, ActionTaken: true},
		{ID: "done", PatientID: "p-1", Timestamp: at(4), TriageLevel: types.TriageLevelHardRed,
			Symptoms: []model.Symptom{sym("Fever", 3)}, ActionTaken: true, Notes: "sent to A&E"},
	}
}

func newWorkflow(t *testing.T, delay time.Duration) (*usecase.AnnotationWorkflow, *failingSubmissions, *fakeClock) {
	t.Helper()
	ctx := context.Background()

	repo := memory.New()
	subs := annotationFixture()
	for _, s := range subs {
		gt.NoError(t, repo.Submission().Put(ctx, s)).Required()
	}

	store := &failingSubmissions{SubmissionRepository: repo.Submission()}
	clock := &fakeClock{now: at(5)}
	w := usecase.NewAnnotationWorkflow(store, subs, delay, clock.Now)
	t.Cleanup(w.Close)
	return w, store, clock
}

func TestAnnotationWorkflow_Seed(t *testing.T) {
	w, _, _ := newWorkflow(t, time.Hour)

	d, ok := w.Draft("amber")
	gt.B(t, ok).True()
	gt.V(t, d).Equal(model.Draft{ActionTaken: true})

	d, ok = w.Draft("done")
	gt.B(t, ok).True()
	gt.V(t, d).Equal(model.Draft{ActionTaken: true, Notes: "sent to A&E"})

	_, ok = w.Draft("missing")
	gt.B(t, ok).False()
}

func TestAnnotationWorkflow_Views(t *testing.T) {
	w, _, _ := newWorkflow(t, time.Hour)

	states := map[model.SubmissionID]model.AnnotationState{}
	for _, v := range w.Views() {
		states[v.Submission.ID] = v.State
	}

	gt.V(t, states).Equal(map[model.SubmissionID]model.AnnotationState{
		"base":  model.AnnotationBaseline,
		"green": model.AnnotationNotRequired,
		"red":   model.AnnotationEditable,
		"amber": model.AnnotationEditable,
		"done":  model.AnnotationCompleted,
	})
}

func TestAnnotationWorkflow_EditGuards(t *testing.T) {
	w, _, _ := newWorkflow(t, time.Hour)
	ctx := context.Background()

	testCases := []struct {
		name string
		id   model.SubmissionID
		want error
	}{
		{"baseline is never editable", "base", usecase.ErrNotEditable},
		{"green is never editable", "green", usecase.ErrNotEditable},
		{"completed is locked", "done", usecase.ErrAnnotationLocked},
		{"unknown submission", "other", usecase.ErrUnknownSubmission},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.B(t, errors.Is(w.SetActionTaken(tc.id, true), tc.want)).True()
			gt.B(t, errors.Is(w.SetNotes(tc.id, "x"), tc.want)).True()
		})
	}

	t.Run("save on baseline fails", func(t *testing.T) {
		_, err := w.Save(ctx, "base")
		gt.B(t, errors.Is(err, usecase.ErrNotEditable)).True()
	})
}

func TestAnnotationWorkflow_SetActionTakenIsLocal(t *testing.T) {
	w, store, _ := newWorkflow(t, time.Hour)
	ctx := context.Background()

	gt.NoError(t, w.SetActionTaken("red", true)).Required()

	d, _ := w.Draft("red")
	gt.B(t, d.ActionTaken).True()

	persisted, err := store.Get(ctx, "red")
	gt.NoError(t, err).Required()
	gt.B(t, persisted.ActionTaken).False()
}

func TestAnnotationWorkflow_NotesDebounce(t *testing.T) {
	const delay = 30 * time.Millisecond
	w, _, _ := newWorkflow(t, delay)

	for _, text := range []string{"c", "ca", "cal", "call", "called GP"} {
		gt.NoError(t, w.SetNotes("red", text)).Required()
	}

	// the editor follows every keystroke, the draft waits for the quiet period
	v, err := w.View("red")
	gt.NoError(t, err).Required()
	gt.S(t, v.Editor).Equal("called GP")
	gt.S(t, v.Draft.Notes).Equal("")

	time.Sleep(delay * 5)

	d, _ := w.Draft("red")
	gt.S(t, d.Notes).Equal("called GP")
}

func TestAnnotationWorkflow_CloseDropsPendingNotes(t *testing.T) {
	const delay = 30 * time.Millisecond
	w, _, _ := newWorkflow(t, delay)

	gt.NoError(t, w.SetNotes("red", "typed before leaving")).Required()
	w.Close()

	time.Sleep(delay * 5)

	d, _ := w.Draft("red")
	gt.S(t, d.Notes).Equal("")
}

func TestAnnotationWorkflow_Save(t *testing.T) {
	t.Run("commits draft and merges it locally", func(t *testing.T) {
		w, store, clock := newWorkflow(t, time.Hour)
		ctx := context.Background()

		gt.NoError(t, w.SetActionTaken("red", true)).Required()
		gt.NoError(t, w.SetNotes("red", "phoned, advised paracetamol")).Required()

		// Save flushes the pending notes instead of waiting an hour
		saved, err := w.Save(ctx, "red")
		gt.NoError(t, err).Required()
		gt.B(t, saved.ActionTaken).True()
		gt.S(t, saved.Notes).Equal("phoned, advised paracetamol")
		gt.V(t, saved.ActionTakenAt).NotNil().Required()
		gt.B(t, saved.ActionTakenAt.Equal(clock.Now())).True()

		persisted, err := store.Get(ctx, "red")
		gt.NoError(t, err).Required()
		gt.S(t, persisted.Notes).Equal("phoned, advised paracetamol")
		gt.V(t, persisted.TriageLevel).Equal(types.TriageLevelRed)

		v, err := w.View("red")
		gt.NoError(t, err).Required()
		gt.V(t, v.State).Equal(model.AnnotationCompleted)
		gt.S(t, v.SaveError).Equal("")
	})

	t.Run("saving twice persists the same state", func(t *testing.T) {
		w, store, clock := newWorkflow(t, time.Hour)
		ctx := context.Background()

		gt.NoError(t, w.SetActionTaken("red", true)).Required()
		gt.NoError(t, w.SetNotes("red", "booked review")).Required()

		_, err := w.Save(ctx, "red")
		gt.NoError(t, err).Required()
		first, err := store.Get(ctx, "red")
		gt.NoError(t, err).Required()

		clock.Advance(time.Hour)
		_, err = w.Save(ctx, "red")
		gt.NoError(t, err).Required()
		second, err := store.Get(ctx, "red")
		gt.NoError(t, err).Required()

		gt.V(t, second).Equal(first)
	})

	t.Run("action without notes keeps its original timestamp", func(t *testing.T) {
		w, store, clock := newWorkflow(t, time.Hour)
		ctx := context.Background()

		gt.NoError(t, w.SetActionTaken("red", true)).Required()
		_, err := w.Save(ctx, "red")
		gt.NoError(t, err).Required()
		takenAt := clock.Now()

		clock.Advance(time.Hour)
		_, err = w.Save(ctx, "red")
		gt.NoError(t, err).Required()

		persisted, err := store.Get(ctx, "red")
		gt.NoError(t, err).Required()
		gt.B(t, persisted.ActionTakenAt.Equal(takenAt)).True()

		// still editable until notes are added
		v, err := w.View("red")
		gt.NoError(t, err).Required()
		gt.V(t, v.State).Equal(model.AnnotationEditable)
	})

	t.Run("clearing the action clears its timestamp", func(t *testing.T) {
		w, store, _ := newWorkflow(t, time.Hour)
		ctx := context.Background()

		gt.NoError(t, w.SetActionTaken("amber", false)).Required()
		_, err := w.Save(ctx, "amber")
		gt.NoError(t, err).Required()

		persisted, err := store.Get(ctx, "amber")
		gt.NoError(t, err).Required()
		gt.B(t, persisted.ActionTaken).False()
		gt.V(t, persisted.ActionTakenAt).Nil()
	})

	t.Run("failure keeps the draft and records the error", func(t *testing.T) {
		w, store, _ := newWorkflow(t, time.Hour)
		ctx := context.Background()

		gt.NoError(t, w.SetActionTaken("red", true)).Required()
		gt.NoError(t, w.SetNotes("red", "left voicemail")).Required()

		store.setFail(true)
		_, err := w.Save(ctx, "red")
		gt.Error(t, err)

		d, _ := w.Draft("red")
		gt.V(t, d).Equal(model.Draft{ActionTaken: true, Notes: "left voicemail"})

		v, err := w.View("red")
		gt.NoError(t, err).Required()
		gt.S(t, v.SaveError).Contains("store unavailable")
		gt.V(t, v.State).Equal(model.AnnotationEditable)
		gt.B(t, v.Submission.ActionTaken).False()

		// retry after the store recovers clears the error
		store.setFail(false)
		_, err = w.Save(ctx, "red")
		gt.NoError(t, err).Required()
		v, err = w.View("red")
		gt.NoError(t, err).Required()
		gt.S(t, v.SaveError).Equal("")
		gt.V(t, v.State).Equal(model.AnnotationCompleted)
	})

	t.Run("completed annotation cannot be changed", func(t *testing.T) {
		w, _, _ := newWorkflow(t, time.Hour)
		_, err := w.Save(context.Background(), "done")
		gt.NoError(t, err)
		gt.B(t, errors.Is(w.SetNotes("done", "changed"), usecase.ErrAnnotationLocked)).True()
	})
}

func TestAnnotationWorkflow_SubmissionsReflectSaves(t *testing.T) {
	w, _, _ := newWorkflow(t, time.Hour)
	ctx := context.Background()

	gt.NoError(t, w.SetActionTaken("red", true)).Required()
	_, err := w.Save(ctx, "red")
	gt.NoError(t, err).Required()

	for _, s := range w.Submissions() {
		if s.ID == "red" {
			gt.B(t, s.ActionTaken).True()
		}
	}
}
