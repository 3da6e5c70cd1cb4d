package model

// AnnotationState is how the detail view presents a submission's action controls
type AnnotationState string

const (
	// AnnotationEditable shows action and notes controls
	AnnotationEditable AnnotationState = "editable"
	// AnnotationCompleted shows the persisted action and notes read-only
	AnnotationCompleted AnnotationState = "completed"
	// AnnotationBaseline is informational only
	AnnotationBaseline AnnotationState = "baseline"
	// AnnotationNotRequired is a Green submission
	AnnotationNotRequired AnnotationState = "not_required"
)

// AnnotationStateOf derives the presentation state from persisted values
func AnnotationStateOf(s *Submission) AnnotationState {
	switch {
	case s.IsBaseline:
		return AnnotationBaseline
	case !s.RequiresAction():
		return AnnotationNotRequired
	case s.IsAnnotationComplete():
		return AnnotationCompleted
	default:
		return AnnotationEditable
	}
}

// Draft is the local, uncommitted action and notes for a submission
type Draft struct {
	ActionTaken bool   `json:"action_taken"`
	Notes       string `json:"notes" masq:"secret"`
}

// AnnotationView is one submission as the annotation workflow presents it
type AnnotationView struct {
	Submission *Submission     `json:"submission"`
	State      AnnotationState `json:"state"`
	Draft      Draft           `json:"draft"`
	// Editor is the notes text as typed, ahead of the debounced draft
	Editor    string `json:"editor" masq:"secret"`
	SaveError string `json:"save_error,omitempty"`
}
