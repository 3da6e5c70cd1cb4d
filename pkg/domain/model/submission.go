package model

import (
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

// SubmissionID is the document id of a symptom submission
type SubmissionID string

func (id SubmissionID) String() string {
	return string(id)
}

// SymptomFever carries a temperature alongside its severity
const SymptomFever = "Fever"

// Symptom is one reported entry of a submission
type Symptom struct {
	Name        string   `json:"symptom"`
	Severity    int      `json:"severity"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Submission is a patient's symptom report. Only the annotation triple
// (ActionTaken, Notes, ActionTakenAt) changes after creation.
type Submission struct {
	ID            SubmissionID      `json:"id"`
	PatientID     PatientID         `json:"patient_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Symptoms      []Symptom         `json:"symptoms"`
	IsBaseline    bool              `json:"is_baseline"`
	TriageLevel   types.TriageLevel `json:"triage_level,omitempty"`
	ActionTaken   bool              `json:"action_taken"`
	Notes         string            `json:"notes,omitempty" masq:"secret"`
	ActionTakenAt *time.Time        `json:"action_taken_timestamp,omitempty"`
}

// Clone returns a deep copy
func (s *Submission) Clone() *Submission {
	c := *s
	c.Symptoms = make([]Symptom, len(s.Symptoms))
	for i, sym := range s.Symptoms {
		c.Symptoms[i] = sym
		if sym.Temperature != nil {
			t := *sym.Temperature
			c.Symptoms[i].Temperature = &t
		}
	}
	if s.ActionTakenAt != nil {
		t := *s.ActionTakenAt
		c.ActionTakenAt = &t
	}
	return &c
}

// RequiresAction reports whether the submission takes part in the action
// workflow. Baseline and Green submissions never do.
func (s *Submission) RequiresAction() bool {
	return !s.IsBaseline && s.TriageLevel != types.TriageLevelGreen
}

// IsAnnotationComplete reports whether both an action and notes are persisted
func (s *Submission) IsAnnotationComplete() bool {
	return s.ActionTaken && s.Notes != ""
}

// ApplyAnnotation overwrites the annotation triple with committed values
func (s *Submission) ApplyAnnotation(update *AnnotationUpdate) {
	s.ActionTaken = update.ActionTaken
	s.Notes = update.Notes
	if update.ActionTakenAt != nil {
		t := *update.ActionTakenAt
		s.ActionTakenAt = &t
	} else {
		s.ActionTakenAt = nil
	}
}

// AnnotationUpdate is the partial write accepted for a submission
type AnnotationUpdate struct {
	ActionTaken   bool
	Notes         string `masq:"secret"`
	ActionTakenAt *time.Time
}
