package interfaces

import "github.com/oncowatch/oncowatch/pkg/domain/types"

// CountSubmissionOption is a functional option narrowing SubmissionRepository.Count
type CountSubmissionOption func(*countSubmissionConfig)

type countSubmissionConfig struct {
	triageLevels []types.TriageLevel
	actionTaken  *bool
}

// WithTriageLevels counts only submissions at one of the levels
func WithTriageLevels(levels ...types.TriageLevel) CountSubmissionOption {
	return func(c *countSubmissionConfig) {
		c.triageLevels = levels
	}
}

// WithActionTaken counts only submissions whose action_taken equals taken
func WithActionTaken(taken bool) CountSubmissionOption {
	return func(c *countSubmissionConfig) {
		c.actionTaken = &taken
	}
}

// BuildCountSubmissionConfig builds a countSubmissionConfig from options
func BuildCountSubmissionConfig(opts ...CountSubmissionOption) *countSubmissionConfig {
	cfg := &countSubmissionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// TriageLevels returns the level filter, or nil if not set
func (c *countSubmissionConfig) TriageLevels() []types.TriageLevel {
	return c.triageLevels
}

// ActionTaken returns the action filter, or nil if not set
func (c *countSubmissionConfig) ActionTaken() *bool {
	return c.actionTaken
}
