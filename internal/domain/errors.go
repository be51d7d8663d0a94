package domain

import "errors"

// ErrorKind discriminates pipeline failures so callers can branch on the
// cause without string matching.
type ErrorKind string

const (
	KindExtraction     ErrorKind = "extraction"
	KindEmptyDocument  ErrorKind = "empty_document"
	KindAuthentication ErrorKind = "authentication"
	KindGeneration     ErrorKind = "generation"
	KindValidation     ErrorKind = "validation"
)

// ReviewError is the single tagged error type for the review pipeline.
// Every terminal failure carries a kind and a user-facing message, and
// optionally wraps the underlying cause.
type ReviewError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ReviewError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ReviewError) Unwrap() error {
	return e.Err
}

// NewError creates a ReviewError with the given kind and message.
func NewError(kind ErrorKind, message string) *ReviewError {
	return &ReviewError{Kind: kind, Message: message}
}

// WrapError creates a ReviewError wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *ReviewError {
	return &ReviewError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the error kind, or "" for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var re *ReviewError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
