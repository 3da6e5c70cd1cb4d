package model

import (
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

// Notification is an escalated submission still awaiting action
type Notification struct {
	SubmissionID SubmissionID      `json:"submission_id"`
	PatientID    PatientID         `json:"patient_id"`
	StudyID      string            `json:"study_id"`
	TriageLevel  types.TriageLevel `json:"triage_level"`
	Timestamp    time.Time         `json:"timestamp"`
}
