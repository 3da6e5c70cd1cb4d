package memory

import (
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	patient    *patientRepository
	submission *submissionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		patient:    newPatientRepository(),
		submission: newSubmissionRepository(),
	}
}

func (m *Memory) Patient() interfaces.PatientRepository {
	return m.patient
}

func (m *Memory) Submission() interfaces.SubmissionRepository {
	return m.submission
}

func (m *Memory) Close() error {
	return nil
}
