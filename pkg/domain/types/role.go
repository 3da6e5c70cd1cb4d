package types

// UserRole is the role tag on a user document
type UserRole string

const (
	UserRolePatient   UserRole = "Patient"
	UserRoleClinician UserRole = "clinician"
)

func (r UserRole) String() string {
	return string(r)
}
