package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the service layer. Handlers translate these to HTTP
// statuses; nothing below the handler layer knows about HTTP.
var (
	// ErrUnauthenticated means the request carried no credential or an invalid one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound covers both "does not exist" and "exists but belongs to another
	// user". Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation (duplicate email, duplicate tag name).
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
