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

type submissionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.SubmissionRepository = &submissionRepository{}

func newSubmissionRepository(client *firestore.Client) *submissionRepository {
	return &submissionRepository{
		client: client,
	}
}

type symptomDoc struct {
	Symptom     string   `firestore:"symptom"`
	Severity    int64    `firestore:"severity"`
	Temperature *float64 `firestore:"temperature,omitempty"`
}

// submissionDoc is the Firestore persistence model. patient_id is a reference
// to the patient's users document, as written by the intake app.
type submissionDoc struct {
	PatientID            *firestore.DocumentRef `firestore:"patient_id"`
	Timestamp            time.Time              `firestore:"timestamp"`
	Symptoms             []symptomDoc           `firestore:"symptoms"`
	IsBaseline           bool                   `firestore:"is_baseline"`
	TriageLevel          string                 `firestore:"triage_level,omitempty"`
	ActionTaken          bool                   `firestore:"action_taken"`
	Notes                string                 `firestore:"notes,omitempty"`
	ActionTakenTimestamp *time.Time             `firestore:"action_taken_timestamp,omitempty"`
}

func (r *submissionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, SubmissionsCollection))
}

func (r *submissionRepository) patientRef(id model.PatientID) *firestore.DocumentRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, UsersCollection)).Doc(id.String())
}

func (r *submissionRepository) toDoc(s *model.Submission) *submissionDoc {
	symptoms := make([]symptomDoc, len(s.Symptoms))
	for i, sym := range s.Symptoms {
		symptoms[i] = symptomDoc{
			Symptom:     sym.Name,
			Severity:    int64(sym.Severity),
			Temperature: sym.Temperature,
		}
	}

	return &submissionDoc{
		PatientID:            r.patientRef(s.PatientID),
		Timestamp:            s.Timestamp,
		Symptoms:             symptoms,
		IsBaseline:           s.IsBaseline,
		TriageLevel:          s.TriageLevel.String(),
		ActionTaken:          s.ActionTaken,
		Notes:                s.Notes,
		ActionTakenTimestamp: s.ActionTakenAt,
	}
}

func (r *submissionRepository) fromDoc(id string, doc *submissionDoc) *model.Submission {
	symptoms := make([]model.Symptom, len(doc.Symptoms))
	for i, sym := range doc.Symptoms {
		symptoms[i] = model.Symptom{
			Name:        sym.Symptom,
			Severity:    int(sym.Severity),
			Temperature: sym.Temperature,
		}
	}

	var patientID model.PatientID
	if doc.PatientID != nil {
		patientID = model.PatientID(doc.PatientID.ID)
	}

	return &model.Submission{
		ID:            model.SubmissionID(id),
		PatientID:     patientID,
		Timestamp:     doc.Timestamp,
		Symptoms:      symptoms,
		IsBaseline:    doc.IsBaseline,
		TriageLevel:   types.TriageLevel(doc.TriageLevel),
		ActionTaken:   doc.ActionTaken,
		Notes:         doc.Notes,
		ActionTakenAt: doc.ActionTakenTimestamp,
	}
}

func (r *submissionRepository) collect(iter *firestore.DocumentIterator, fn func(*model.Submission) error) error {
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate submissions")
		}

		var doc submissionDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode submission", goerr.V("doc_id", snap.Ref.ID))
		}
		if err := fn(r.fromDoc(snap.Ref.ID, &doc)); err != nil {
			return err
		}
	}
}

func (r *submissionRepository) GetLatest(ctx context.Context, patientID model.PatientID) (*model.Submission, error) {
	var latest *model.Submission
	iter := r.collection().
		Where("patient_id", "==", r.patientRef(patientID)).
		OrderBy("timestamp", firestore.Desc).
		Limit(1).
		Documents(ctx)

	err := r.collect(iter, func(s *model.Submission) error {
		latest = s
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest submission", goerr.V("patient_id", patientID))
	}
	return latest, nil
}

func (r *submissionRepository) ListByPatient(ctx context.Context, patientID model.PatientID) ([]*model.Submission, error) {
	subs := make([]*model.Submission, 0)
	iter := r.collection().
		Where("patient_id", "==", r.patientRef(patientID)).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)

	err := r.collect(iter, func(s *model.Submission) error {
		subs = append(subs, s)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list submissions", goerr.V("patient_id", patientID))
	}
	return subs, nil
}

func escalationLevels() []string {
	levels := types.EscalationLevels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.String()
	}
	return out
}

func (r *submissionRepository) ListEscalations(ctx context.Context, since time.Time) ([]*model.Submission, error) {
	subs := make([]*model.Submission, 0)
	iter := r.collection().
		Where("triage_level", "in", escalationLevels()).
		Where("timestamp", ">=", since).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)

	err := r.collect(iter, func(s *model.Submission) error {
		subs = append(subs, s)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list escalations", goerr.V("since", since))
	}
	return subs, nil
}

func (r *submissionRepository) Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get submission", goerr.V("id", id))
	}

	var doc submissionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode submission", goerr.V("id", id))
	}
	return r.fromDoc(snap.Ref.ID, &doc), nil
}

func (r *submissionRepository) Put(ctx context.Context, submission *model.Submission) error {
	if submission.ID == "" {
		return goerr.New("submission ID is required")
	}

	if _, err := r.collection().Doc(submission.ID.String()).Set(ctx, r.toDoc(submission)); err != nil {
		return goerr.Wrap(err, "failed to put submission", goerr.V("id", submission.ID))
	}
	return nil
}

func (r *submissionRepository) UpdateAnnotation(ctx context.Context, id model.SubmissionID, update *model.AnnotationUpdate) error {
	var takenAt any = firestore.Delete
	if update.ActionTakenAt != nil {
		takenAt = *update.ActionTakenAt
	}

	_, err := r.collection().Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "action_taken", Value: update.ActionTaken},
		{Path: "notes", Value: update.Notes},
		{Path: "action_taken_timestamp", Value: takenAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update annotation", goerr.V("id", id))
	}
	return nil
}

func (r *submissionRepository) Count(ctx context.Context, opts ...interfaces.CountSubmissionOption) (int64, error) {
	cfg := interfaces.BuildCountSubmissionConfig(opts...)

	q := r.collection().Query
	if levels := cfg.TriageLevels(); levels != nil {
		values := make([]string, len(levels))
		for i, l := range levels {
			values[i] = l.String()
		}
		q = q.Where("triage_level", "in", values)
	}
	if taken := cfg.ActionTaken(); taken != nil {
		q = q.Where("action_taken", "==", *taken)
	}

	res, err := q.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count submissions")
	}
	return countResult(res)
}

func (r *submissionRepository) Scan(ctx context.Context, fn func(*model.Submission) error) error {
	return r.collect(r.collection().Documents(ctx), fn)
}
