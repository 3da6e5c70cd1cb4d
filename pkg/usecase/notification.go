package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

type NotificationUseCase struct {
	repo     interfaces.Repository
	lookback time.Duration
	clock    func() time.Time
}

func NewNotificationUseCase(repo interfaces.Repository, lookback time.Duration, clock func() time.Time) *NotificationUseCase {
	return &NotificationUseCase{
		repo:     repo,
		lookback: lookback,
		clock:    clock,
	}
}

// List returns escalations inside the lookback that still await action,
// newest first
func (uc *NotificationUseCase) List(ctx context.Context) ([]*model.Notification, error) {
	since := uc.clock().Add(-uc.lookback)

	escalations, err := uc.repo.Submission().ListEscalations(ctx, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list escalations", goerr.V("since", since))
	}

	studyIDs := make(map[model.PatientID]string)
	notifications := []*model.Notification{}
	for _, s := range escalations {
		if s.ActionTaken || s.IsBaseline {
			continue
		}

		studyID, ok := studyIDs[s.PatientID]
		if !ok {
			studyID = uc.studyID(ctx, s.PatientID)
			studyIDs[s.PatientID] = studyID
		}

		notifications = append(notifications, &model.Notification{
			SubmissionID: s.ID,
			PatientID:    s.PatientID,
			StudyID:      studyID,
			TriageLevel:  s.TriageLevel,
			Timestamp:    s.Timestamp,
		})
	}

	return notifications, nil
}

func (uc *NotificationUseCase) studyID(ctx context.Context, id model.PatientID) string {
	p, err := uc.repo.Patient().Get(ctx, id)
	if err != nil {
		logging.From(ctx).Warn("failed to resolve patient for notification",
			"patient_id", id,
			"error", err.Error(),
		)
		return types.NotAvailable
	}
	return p.StudyID()
}
