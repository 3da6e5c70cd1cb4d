package model

import "time"

// ExportSubmissionRow is one row of the Submissions sheet, already formatted
type ExportSubmissionRow struct {
	StudyID        string
	SubmissionDate string
	TriageLevel    string
	Symptoms       string
	IsBaseline     string
	Notes          string `masq:"secret"`
}

// ExportPatientRow is one row of the Patients sheet, already formatted
type ExportPatientRow struct {
	StudyID            string
	CancerType         string
	TriageLevel        string
	LastSubmissionDate string
}

// Export is the flattened roster and submission history for a workbook
type Export struct {
	Submissions []ExportSubmissionRow
	Patients    []ExportPatientRow
	GeneratedAt time.Time
}
