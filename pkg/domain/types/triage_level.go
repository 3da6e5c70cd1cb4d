package types

import "fmt"

// TriageLevel is the clinical urgency assigned upstream to a submission or patient
type TriageLevel string

const (
	TriageLevelGreen   TriageLevel = "Green"
	TriageLevelAmber   TriageLevel = "Amber"
	TriageLevelRed     TriageLevel = "Red"
	TriageLevelHardRed TriageLevel = "Hard Red"
)

// NotAvailable is rendered for absent optional values
const NotAvailable = "N/A"

// AllTriageLevels returns all valid triage levels, lowest urgency first
func AllTriageLevels() []TriageLevel {
	return []TriageLevel{
		TriageLevelGreen,
		TriageLevelAmber,
		TriageLevelRed,
		TriageLevelHardRed,
	}
}

// EscalationLevels returns the levels that put a submission on the escalation feed
func EscalationLevels() []TriageLevel {
	return []TriageLevel{TriageLevelRed, TriageLevelHardRed}
}

// IsValid checks if the triage level is one of the known levels
func (l TriageLevel) IsValid() bool {
	switch l {
	case TriageLevelGreen,
		TriageLevelAmber,
		TriageLevelRed,
		TriageLevelHardRed:
		return true
	default:
		return false
	}
}

// IsEscalation reports whether the level is Red or Hard Red
func (l TriageLevel) IsEscalation() bool {
	return l == TriageLevelRed || l == TriageLevelHardRed
}

// String returns the stored representation. An absent level is empty.
func (l TriageLevel) String() string {
	return string(l)
}

// Label returns the display form, "N/A" when the level is absent
func (l TriageLevel) Label() string {
	if l == "" {
		return NotAvailable
	}
	return string(l)
}

// ParseTriageLevel parses a stored triage string. Empty input is an absent level.
func ParseTriageLevel(s string) (TriageLevel, error) {
	if s == "" {
		return "", nil
	}
	level := TriageLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid triage level: %s", s)
	}
	return level, nil
}
