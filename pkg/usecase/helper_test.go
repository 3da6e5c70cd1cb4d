package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/repository/memory"
)

// stubRepo wraps the memory repository so tests can slow down or break
// individual lookups
type stubRepo struct {
	*memory.Memory
	patients    *stubPatients
	submissions *stubSubmissions
}

func (r *stubRepo) Patient() interfaces.PatientRepository {
	return r.patients
}

func (r *stubRepo) Submission() interfaces.SubmissionRepository {
	return r.submissions
}

type stubPatients struct {
	interfaces.PatientRepository
	failGet atomic.Bool
}

func (p *stubPatients) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	if p.failGet.Load() {
		return nil, goerr.New("store unavailable", goerr.V("patient_id", id))
	}
	return p.PatientRepository.Get(ctx, id)
}

type stubSubmissions struct {
	interfaces.SubmissionRepository

	mu        sync.Mutex
	delays    map[model.PatientID]time.Duration
	failures  map[model.PatientID]bool
	failCount bool
	// started is signalled when a ListByPatient call begins, if set
	started chan model.PatientID
}

func newStubRepo() *stubRepo {
	mem := memory.New()
	return &stubRepo{
		Memory:   mem,
		patients: &stubPatients{PatientRepository: mem.Patient()},
		submissions: &stubSubmissions{
			SubmissionRepository: mem.Submission(),
			delays:               map[model.PatientID]time.Duration{},
			failures:             map[model.PatientID]bool{},
		},
	}
}

func (s *stubSubmissions) wait(ctx context.Context, id model.PatientID) error {
	s.mu.Lock()
	d := s.delays[id]
	fail := s.failures[id]
	s.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return goerr.New("lookup failed", goerr.V("patient_id", id))
	}
	return nil
}

func (s *stubSubmissions) GetLatest(ctx context.Context, id model.PatientID) (*model.Submission, error) {
	if err := s.wait(ctx, id); err != nil {
		return nil, err
	}
	return s.SubmissionRepository.GetLatest(ctx, id)
}

func (s *stubSubmissions) ListByPatient(ctx context.Context, id model.PatientID) ([]*model.Submission, error) {
	if s.started != nil {
		s.started <- id
	}
	if err := s.wait(ctx, id); err != nil {
		return nil, err
	}
	return s.SubmissionRepository.ListByPatient(ctx, id)
}

func (s *stubSubmissions) Count(ctx context.Context, opts ...interfaces.CountSubmissionOption) (int64, error) {
	s.mu.Lock()
	fail := s.failCount
	s.mu.Unlock()
	if fail {
		return 0, goerr.New("count failed")
	}
	return s.SubmissionRepository.Count(ctx, opts...)
}

func seedPatients(t *testing.T, repo interfaces.Repository, patients ...*model.Patient) {
	t.Helper()
	for _, p := range patients {
		if p.Role == "" {
			p.Role = types.UserRolePatient
		}
		gt.NoError(t, repo.Patient().Put(context.Background(), p)).Required()
	}
}

func seedSubmissions(t *testing.T, repo interfaces.Repository, subs ...*model.Submission) {
	t.Helper()
	for _, s := range subs {
		gt.NoError(t, repo.Submission().Put(context.Background(), s)).Required()
	}
}

func forPatient(id model.PatientID, s *model.Submission) *model.Submission {
	s.PatientID = id
	return s
}
