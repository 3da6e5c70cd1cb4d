package model

import (
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

// PatientID is the document id of a patient user
type PatientID string

func (id PatientID) String() string {
	return string(id)
}

// Patient is a role-tagged user record owned by the document store.
// KeySymptoms is derived by roster aggregation and never persisted.
type Patient struct {
	ID                 PatientID         `json:"id"`
	Role               types.UserRole    `json:"role"`
	DisplayName        string            `json:"display_name,omitempty"`
	Email              string            `json:"email,omitempty"`
	CancerType         string            `json:"cancer_type,omitempty"`
	TriageLevel        types.TriageLevel `json:"triage_level,omitempty"`
	LastSubmissionDate *time.Time        `json:"last_submission_date,omitempty"`
	KeySymptoms        string            `json:"key_symptoms,omitempty"`
}

// StudyID is the identifier clinicians see. The display name carries the
// study id in the user store.
func (p *Patient) StudyID() string {
	if p.DisplayName == "" {
		return types.NotAvailable
	}
	return p.DisplayName
}

// Clone returns a deep copy
func (p *Patient) Clone() *Patient {
	c := *p
	if p.LastSubmissionDate != nil {
		t := *p.LastSubmissionDate
		c.LastSubmissionDate = &t
	}
	return &c
}
