package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

func runPatientRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		last := base
		p := &model.Patient{
			ID:                 "patient-a",
			Role:               types.UserRolePatient,
			DisplayName:        "ONC_UHL001",
			CancerType:         "breast",
			TriageLevel:        types.TriageLevelAmber,
			LastSubmissionDate: &last,
		}
		gt.NoError(t, repo.Patient().Put(ctx, p)).Required()

		got, err := repo.Patient().Get(ctx, "patient-a")
		gt.NoError(t, err).Required()
		gt.V(t, got.DisplayName).Equal("ONC_UHL001")
		gt.V(t, got.TriageLevel).Equal(types.TriageLevelAmber)
		gt.V(t, got.LastSubmissionDate).NotNil()
		gt.B(t, got.LastSubmissionDate.Equal(base)).True()
	})

	t.Run("Get missing patient fails", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Patient().Get(context.Background(), "nobody")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Count counts only the role", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		n, err := repo.Patient().Count(ctx, types.UserRolePatient)
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(int64(0))

		for _, p := range []*model.Patient{
			{ID: "p-1", Role: types.UserRolePatient},
			{ID: "p-2", Role: types.UserRolePatient},
			{ID: "c-1", Role: types.UserRoleClinician},
		} {
			gt.NoError(t, repo.Patient().Put(ctx, p)).Required()
		}

		n, err = repo.Patient().Count(ctx, types.UserRolePatient)
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(int64(2))

		n, err = repo.Patient().Count(ctx, types.UserRoleClinician)
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(int64(1))
	})

	t.Run("ListByRole filters role and orders by ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, p := range []*model.Patient{
			{ID: "p-3", Role: types.UserRolePatient},
			{ID: "c-1", Role: types.UserRoleClinician},
			{ID: "p-1", Role: types.UserRolePatient},
			{ID: "p-2", Role: types.UserRolePatient},
		} {
			gt.NoError(t, repo.Patient().Put(ctx, p)).Required()
		}

		patients, err := repo.Patient().ListByRole(ctx, types.UserRolePatient)
		gt.NoError(t, err).Required()
		gt.A(t, patients).Length(3)
		gt.V(t, patients[0].ID).Equal(model.PatientID("p-1"))
		gt.V(t, patients[1].ID).Equal(model.PatientID("p-2"))
		gt.V(t, patients[2].ID).Equal(model.PatientID("p-3"))

		n, err := repo.Patient().Count(ctx, types.UserRolePatient)
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(int64(3))
	})

	t.Run("absent optional fields stay absent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Patient().Put(ctx, &model.Patient{ID: "bare", Role: types.UserRolePatient})).Required()

		got, err := repo.Patient().Get(ctx, "bare")
		gt.NoError(t, err).Required()
		gt.V(t, got.TriageLevel).Equal(types.TriageLevel(""))
		gt.V(t, got.LastSubmissionDate).Nil()
		gt.S(t, got.StudyID()).Equal("N/A")
	})
}

func TestPatientRepository_Memory(t *testing.T) {
	runPatientRepositoryTest(t, newMemoryRepository)
}

func TestPatientRepository_Firestore(t *testing.T) {
	runPatientRepositoryTest(t, newFirestoreRepository)
}
