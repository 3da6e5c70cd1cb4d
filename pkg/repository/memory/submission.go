package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

type submissionRepository struct {
	mu          sync.RWMutex
	submissions map[model.SubmissionID]*model.Submission
}

func newSubmissionRepository() *submissionRepository {
	return &submissionRepository{
		submissions: make(map[model.SubmissionID]*model.Submission),
	}
}

// byTimestamp orders oldest first, ID breaks ties
func byTimestamp(subs []*model.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Timestamp.Equal(subs[j].Timestamp) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].Timestamp.Before(subs[j].Timestamp)
	})
}

func (r *submissionRepository) listByPatient(patientID model.PatientID) []*model.Submission {
	subs := make([]*model.Submission, 0)
	for _, s := range r.submissions {
		if s.PatientID == patientID {
			subs = append(subs, s.Clone())
		}
	}
	byTimestamp(subs)
	return subs
}

func (r *submissionRepository) GetLatest(ctx context.Context, patientID model.PatientID) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.listByPatient(patientID)
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[len(subs)-1], nil
}

func (r *submissionRepository) ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listByPatient(patientID), nil
}

func (r *submissionRepository) ListEscalations(ctx context.Context, since time.Time) ([]*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]*model.Submission, 0)
	for _, s := range r.submissions {
		if s.TriageLevel.IsEscalation() && !s.Timestamp.Before(since) {
			subs = append(subs, s.Clone())
		}
	}
	byTimestamp(subs)
	slices.Reverse(subs)
	return subs, nil
}

func (r *submissionRepository) Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.submissions[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
	}
	return s.Clone(), nil
}

func (r *submissionRepository) Put(ctx context.Context, submission *model.Submission) error {
	if submission.ID == "" {
		return goerr.New("submission ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.submissions[submission.ID] = submission.Clone()
	return nil
}

func (r *submissionRepository) UpdateAnnotation(ctx context.Context, id model.SubmissionID, update *model.AnnotationUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.submissions[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
	}

	s.ApplyAnnotation(update)
	return nil
}

func (r *submissionRepository) Count(ctx context.Context, opts ...interfaces.CountSubmissionOption) (int64, error) {
	cfg := interfaces.BuildCountSubmissionConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.submissions {
		if levels := cfg.TriageLevels(); levels != nil && !slices.Contains(levels, s.TriageLevel) {
			continue
		}
		if taken := cfg.ActionTaken(); taken != nil && s.ActionTaken != *taken {
			continue
		}
		n++
	}
	return n, nil
}

func (r *submissionRepository) Scan(ctx context.Context, fn func(*model.Submission) error) error {
	r.mu.RLock()
	subs := make([]*model.Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		subs = append(subs, s.Clone())
	}
	r.mu.RUnlock()

	byTimestamp(subs)
	for _, s := range subs {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}
