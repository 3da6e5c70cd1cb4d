package model

import "fmt"

// ConsistencyIssue is a stored submission breaking a data invariant
type ConsistencyIssue struct {
	SubmissionID SubmissionID
	PatientID    PatientID
	Message      string
}

// CheckConsistency lists the invariant violations of a stored submission
func (s *Submission) CheckConsistency() []ConsistencyIssue {
	var issues []ConsistencyIssue
	add := func(format string, args ...any) {
		issues = append(issues, ConsistencyIssue{
			SubmissionID: s.ID,
			PatientID:    s.PatientID,
			Message:      fmt.Sprintf(format, args...),
		})
	}

	seen := make(map[string]bool, len(s.Symptoms))
	for _, sym := range s.Symptoms {
		if seen[sym.Name] {
			add("duplicate symptom %q", sym.Name)
		}
		seen[sym.Name] = true
	}

	if s.TriageLevel != "" && !s.TriageLevel.IsValid() {
		add("unknown triage level %q", s.TriageLevel)
	}

	if s.ActionTakenAt != nil && !s.ActionTaken {
		add("action_taken_timestamp set without action_taken")
	}

	if s.IsBaseline && (s.ActionTaken || s.ActionTakenAt != nil) {
		add("baseline submission carries an action")
	}

	if s.PatientID == "" {
		add("missing patient reference")
	}

	return issues
}
