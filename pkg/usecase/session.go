package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// Session is one clinician's dashboard state. It holds at most one selected
// patient and the annotation workflow for that patient.
type Session struct {
	ID        string
	Clinician string
	CreatedAt time.Time

	detail *DetailUseCase

	mu        sync.Mutex
	lastSeen  time.Time
	seq       uint64
	cancel    context.CancelFunc
	patient   *model.Patient
	trend     *model.Trend
	workflow  *AnnotationWorkflow
	selecting bool
}

// Loading reports whether a selection is in flight
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selecting
}

// SelectPatient replaces the current selection. Any in-flight selection is
// canceled, and a load that finishes after a newer selection started is
// discarded with ErrStaleSelection.
func (s *Session) SelectPatient(ctx context.Context, patientID model.PatientID) (*model.PatientDetail, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.selecting = true
	s.mu.Unlock()
	defer cancel()

	patient, submissions, err := s.detail.Load(ctx, patientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return nil, goerr.Wrap(ErrStaleSelection, "selection superseded", goerr.V(PatientIDKey, patientID))
	}
	s.cancel = nil
	s.selecting = false
	if err != nil {
		return nil, err
	}

	if s.workflow != nil {
		s.workflow.Close()
	}
	s.patient = patient
	s.trend = ComputeTrend(submissions, s.detail.Now())
	s.workflow = s.detail.NewWorkflow(submissions)

	logging.From(ctx).Debug("patient selected",
		"session_id", s.ID,
		"patient_id", patientID,
		"submissions", len(submissions),
	)
	return s.detailLocked(), nil
}

// Detail returns the current selection with annotations as they stand now
func (s *Session) Detail() (*model.PatientDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workflow == nil {
		return nil, goerr.Wrap(ErrNoSelection, "no patient detail", goerr.V("session_id", s.ID))
	}
	return s.detailLocked(), nil
}

func (s *Session) detailLocked() *model.PatientDetail {
	trend := *s.trend
	// escalations show committed annotations
	trend.Escalations = Escalations(s.workflow.Submissions())

	return &model.PatientDetail{
		Patient:     s.patient.Clone(),
		Trend:       &trend,
		Annotations: s.workflow.Views(),
	}
}

// Trend returns the trend of patientID if it is the current selection.
// Symptoms and windows come from the same selection.
func (s *Session) Trend(patientID model.PatientID) (*model.Trend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trend == nil || s.patient.ID != patientID {
		return nil, goerr.Wrap(ErrNoSelection, "patient is not selected",
			goerr.V("session_id", s.ID),
			goerr.V(PatientIDKey, patientID))
	}
	return s.detailLocked().Trend, nil
}

// Workflow returns the annotation workflow of the current selection
func (s *Session) Workflow() (*AnnotationWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workflow == nil {
		return nil, goerr.Wrap(ErrNoSelection, "no annotation workflow", goerr.V("session_id", s.ID))
	}
	return s.workflow, nil
}

// Close cancels any in-flight selection and disposes the workflow
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	if s.workflow != nil {
		s.workflow.Close()
		s.workflow = nil
	}
	s.patient = nil
	s.trend = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory. Sessions idle longer than the TTL
// are dropped lazily on access.
type SessionStore struct {
	detail *DetailUseCase
	ttl    time.Duration
	clock  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(detail *DetailUseCase, ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		detail:   detail,
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session for the clinician
func (st *SessionStore) Create(clinician string) *Session {
	now := st.clock()
	s := &Session{
		ID:        uuid.NewString(),
		Clinician: clinician,
		CreatedAt: now,
		detail:    st.detail,
		lastSeen:  now,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(now)
	st.sessions[s.ID] = s
	return s
}

// Get returns a live session and refreshes its idle timer
func (st *SessionStore) Get(id string) (*Session, bool) {
	now := st.clock()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(now)

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Delete closes and forgets a session
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) sweepLocked(now time.Time) {
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.ttl {
			delete(st.sessions, id)
			s.Close()
		}
	}
}
