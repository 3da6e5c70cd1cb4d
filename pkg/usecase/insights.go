package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/utils/errutil"
	"golang.org/x/sync/errgroup"
)

type InsightsUseCase struct {
	repo interfaces.Repository
}

func NewInsightsUseCase(repo interfaces.Repository) *InsightsUseCase {
	return &InsightsUseCase{repo: repo}
}

// Get computes every dashboard counter independently. A counter whose query
// fails is left nil and logged while the others are still returned.
func (uc *InsightsUseCase) Get(ctx context.Context) *model.Insights {
	insights := &model.Insights{}

	counters := []struct {
		name  string
		dst   **int64
		count func(ctx context.Context) (int64, error)
	}{
		{"patients", &insights.Patients, func(ctx context.Context) (int64, error) {
			return uc.repo.Patient().Count(ctx, types.UserRolePatient)
		}},
		{"submissions", &insights.Submissions, func(ctx context.Context) (int64, error) {
			return uc.repo.Submission().Count(ctx)
		}},
		{"red_alerts", &insights.RedAlerts, func(ctx context.Context) (int64, error) {
			return uc.repo.Submission().Count(ctx, interfaces.WithTriageLevels(types.EscalationLevels()...))
		}},
		{"responses", &insights.Responses, func(ctx context.Context) (int64, error) {
			return uc.repo.Submission().Count(ctx, interfaces.WithActionTaken(true))
		}},
	}

	var eg errgroup.Group
	for _, c := range counters {
		eg.Go(func() error {
			n, err := c.count(ctx)
			if err != nil {
				_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to count", goerr.V("counter", c.name)), "insight counter failed")
				return nil
			}
			*c.dst = &n
			return nil
		})
	}
	_ = eg.Wait()

	return insights
}
