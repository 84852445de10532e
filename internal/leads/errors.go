package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDuplicateSession is returned when a session id was already ingested
	ErrDuplicateSession = errors.New("session id already exists")

	// ErrInvalidLang is returned when the language is not AR or EN
	ErrInvalidLang = errors.New("lang must be AR or EN")
)

// MissingFieldError reports a missing required field by name.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}
