package store

import "errors"

// ErrNotFound is returned when an operation targets an id that no longer
// exists. Read paths treat it as benign; write paths may swallow it.
var ErrNotFound = errors.New("not found")

// ValidationError signals malformed input. It is always raised before any
// mutation, so a failed operation is never partially applied.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
