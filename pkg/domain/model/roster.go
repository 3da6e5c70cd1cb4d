package model

import "time"

// RosterEntry is a patient row with fields derived from their latest submission
type RosterEntry struct {
	Patient
	LatestSubmissionID SubmissionID `json:"latest_submission_id,omitempty"`
	ActionTaken        bool         `json:"action_taken"`
	// Degraded marks a row whose latest-submission lookup failed
	Degraded bool `json:"degraded,omitempty"`
}

// RosterSnapshot is a published roster, complete once all lookups returned
type RosterSnapshot struct {
	Entries     []*RosterEntry `json:"entries"`
	GeneratedAt time.Time      `json:"generated_at"`
}
