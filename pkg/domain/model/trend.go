package model

import (
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

// TimelinePoint is the forward-filled severity of every known symptom as of
// one submission. A nil severity means the symptom was never reported yet.
type TimelinePoint struct {
	SubmissionID SubmissionID    `json:"submission_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Severities   map[string]*int `json:"severities"`
}

// WindowPoint is a timeline point placed in a window with its display label
type WindowPoint struct {
	TimelinePoint
	Label string `json:"time"`
}

// SymptomSeries is one chart line. ColorIndex cycles 1..5 in first-seen order.
type SymptomSeries struct {
	Name       string `json:"name"`
	ColorIndex int    `json:"color_index"`
}

// Trend is everything the detail view charts for one patient
type Trend struct {
	Symptoms    []SymptomSeries                `json:"symptoms"`
	Timeline    []TimelinePoint                `json:"timeline"`
	Windows     map[types.Window][]WindowPoint `json:"windows"`
	Escalations []*Submission                  `json:"escalations"`
	ComputedAt  time.Time                      `json:"computed_at"`
}
