package model

// PatientDetail is the per-patient surface opened from the roster
type PatientDetail struct {
	Patient     *Patient          `json:"patient"`
	Trend       *Trend            `json:"trend"`
	Annotations []*AnnotationView `json:"annotations"`
}
