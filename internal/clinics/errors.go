package clinics

import "errors"

var (
	// ErrClinicNotFound is returned when a clinic is not found
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrClinicExists is returned when creating a clinic whose id is taken
	ErrClinicExists = errors.New("clinic already exists")
)

// MissingFieldError reports a missing required field by name.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}
