package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Scanned int
	Issues  []model.ConsistencyIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue model.ConsistencyIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDB scans every stored submission for invariant violations.
// It does NOT modify any data.
func (uc *UseCases) ValidateDB(ctx context.Context) (*ValidationResult, error) {
	result := &ValidationResult{}

	err := uc.repo.Submission().Scan(ctx, func(s *model.Submission) error {
		result.Scanned++
		for _, issue := range s.CheckConsistency() {
			result.AddIssue(issue)
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan submissions")
	}

	return result, nil
}
