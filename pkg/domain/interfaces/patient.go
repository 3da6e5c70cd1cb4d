package interfaces

import (
	"context"

	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

// PatientRepository defines the interface for user records with a patient role
type PatientRepository interface {
	// ListByRole returns users with the role, ordered by document ID
	ListByRole(ctx context.Context, role types.UserRole) ([]*model.Patient, error)

	// Get retrieves a user by ID
	Get(ctx context.Context, id model.PatientID) (*model.Patient, error)

	// Put creates or replaces a user record
	Put(ctx context.Context, patient *model.Patient) error

	// Count counts users with the role using an aggregation query
	Count(ctx context.Context, role types.UserRole) (int64, error)
}
