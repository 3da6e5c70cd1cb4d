package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

type patientRepository struct {
	mu       sync.RWMutex
	patients map[model.PatientID]*model.Patient
}

func newPatientRepository() *patientRepository {
	return &patientRepository{
		patients: make(map[model.PatientID]*model.Patient),
	}
}

func (r *patientRepository) ListByRole(ctx context.Context, role types.UserRole) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patients := make([]*model.Patient, 0)
	for _, p := range r.patients {
		if p.Role == role {
			patients = append(patients, p.Clone())
		}
	}

	// Firestore returns documents ordered by ID
	sort.Slice(patients, func(i, j int) bool {
		return patients[i].ID < patients[j].ID
	})

	return patients, nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "patient not found", goerr.V("id", id))
	}
	return p.Clone(), nil
}

func (r *patientRepository) Put(ctx context.Context, patient *model.Patient) error {
	if patient.ID == "" {
		return goerr.New("patient ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := patient.Clone()
	// derived field, never persisted
	stored.KeySymptoms = ""
	r.patients[patient.ID] = stored
	return nil
}

func (r *patientRepository) Count(ctx context.Context, role types.UserRole) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.patients {
		if p.Role == role {
			n++
		}
	}
	return n, nil
}
