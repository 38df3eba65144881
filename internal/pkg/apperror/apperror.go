package apperror

import "net/http"

// Kind classifies an AppError independently of its HTTP status.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindEligibilityDenied   Kind = "eligibility_denied"
	KindConflict            Kind = "conflict"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindForbidden           Kind = "forbidden"
	KindUnauthorized        Kind = "unauthorized"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Stable machine-readable category
	Message string // User-facing error message
	Details any    // Optional payload rendered next to the message (e.g. conflicting intervals)
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
// The kind is derived from the status code.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFor(code),
		Message: message,
	}
}

// NewKind creates a new AppError with an explicit kind.
func NewKind(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFor(code),
		Message: message,
		Err:     err,
	}
}

// WithDetails returns a copy of e carrying details; errors.Is still matches e.
func (e *AppError) WithDetails(details any) *AppError {
	return &AppError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Details: details,
		Err:     e,
	}
}

// WithMessage returns a copy of e with a more specific message; errors.Is still matches e.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: message,
		Details: e.Details,
		Err:     e,
	}
}

func kindFor(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnauthorized:
		return KindUnauthorized
	default:
		return ""
	}
}
