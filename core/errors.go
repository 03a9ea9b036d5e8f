package core

import "github.com/pkg/errors"

var (
	// ErrDocNotFound is returned by a Store when a document does not exist.
	ErrDocNotFound = errors.New("document not found")

	// ErrPermissionDenied is returned by a Store when the caller is not allowed
	// to read or write a document. Reads that inform a security decision must
	// absorb it and fall back to the least-privileged interpretation.
	ErrPermissionDenied = errors.New("permission denied")

	// identity provider errors
	ErrEmailTaken       = errors.New("identity already exists")
	ErrWeakCredential   = errors.New("credential rejected")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// IsDocNotFound reports whether err is (or wraps) ErrDocNotFound.
func IsDocNotFound(err error) bool {
	return errors.Cause(err) == ErrDocNotFound
}

// IsPermissionDenied reports whether err is (or wraps) ErrPermissionDenied.
func IsPermissionDenied(err error) bool {
	return errors.Cause(err) == ErrPermissionDenied
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
