package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type patientRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.PatientRepository = &patientRepository{}

func newPatientRepository(client *firestore.Client) *patientRepository {
	return &patientRepository{
		client: client,
	}
}

// userDoc is the Firestore persistence model of the users collection
type userDoc struct {
	Role               string     `firestore:"role"`
	DisplayName        string     `firestore:"displayName,omitempty"`
	Email              string     `firestore:"email,omitempty"`
	CancerType         string     `firestore:"cancer_type,omitempty"`
	TriageLevel        string     `firestore:"triage_level,omitempty"`
	LastSubmissionDate *time.Time `firestore:"last_submission_date,omitempty"`
}

func (r *patientRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, UsersCollection))
}

func (r *patientRepository) toDoc(p *model.Patient) *userDoc {
	return &userDoc{
		Role:               p.Role.String(),
		DisplayName:        p.DisplayName,
		Email:              p.Email,
		CancerType:         p.CancerType,
		TriageLevel:        p.TriageLevel.String(),
		LastSubmissionDate: p.LastSubmissionDate,
	}
}

func (r *patientRepository) fromDoc(id string, doc *userDoc) *model.Patient {
	return &model.Patient{
		ID:          model.PatientID(id),
		Role:        types.UserRole(doc.Role),
		DisplayName: doc.DisplayName,
		Email:       doc.Email,
		CancerType:  doc.CancerType,
		// Stored as written by the intake app; unknown values render as-is
		TriageLevel:        types.TriageLevel(doc.TriageLevel),
		LastSubmissionDate: doc.LastSubmissionDate,
	}
}

func (r *patientRepository) ListByRole(ctx context.Context, role types.UserRole) ([]*model.Patient, error) {
	iter := r.collection().
		Where("role", "==", role.String()).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	patients := make([]*model.Patient, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users", goerr.V("role", role))
		}

		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", snap.Ref.ID))
		}
		patients = append(patients, r.fromDoc(snap.Ref.ID, &doc))
	}

	return patients, nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "patient not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("id", id))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode patient", goerr.V("id", id))
	}
	return r.fromDoc(snap.Ref.ID, &doc), nil
}

func (r *patientRepository) Put(ctx context.Context, patient *model.Patient) error {
	if patient.ID == "" {
		return goerr.New("patient ID is required")
	}

	if _, err := r.collection().Doc(patient.ID.String()).Set(ctx, r.toDoc(patient)); err != nil {
		return goerr.Wrap(err, "failed to put patient", goerr.V("id", patient.ID))
	}
	return nil
}

func (r *patientRepository) Count(ctx context.Context, role types.UserRole) (int64, error) {
	q := r.collection().Where("role", "==", role.String())
	res, err := q.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count users", goerr.V("role", role))
	}
	return countResult(res)
}
