package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Patient() PatientRepository
	Submission() SubmissionRepository

	Close() error
}
