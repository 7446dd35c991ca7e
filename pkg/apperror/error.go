package apperror

import (
	"fmt"
	"net/http"
)

// Error is the error type returned across the module. Code identifies the
// failure class; HTTPStatus is only meaningful when the error is rendered by
// the stub repository server.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error
func (e *Error) Unwrap() error {
	return e.Internal
}

// Is reports whether target is an *Error with the same code, so derived
// errors match their sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithInternal returns a copy of the error with an internal error attached
func (e *Error) WithInternal(err error) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   err,
		Details:    e.Details,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    message,
		Internal:   e.Internal,
		Details:    e.Details,
	}
}

// WithDetails returns a copy of the error with details attached
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   e.Internal,
		Details:    details,
	}
}

// New creates a new application error
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

var (
	// Resource state errors
	ErrPrecondition   = New(http.StatusPreconditionFailed, "precondition_failed", "Operation requires state the resource does not have yet")
	ErrNotImplemented = New(http.StatusNotImplemented, "not_implemented", "Not implemented")

	// Model conformance errors
	ErrModelMismatch            = New(http.StatusConflict, "model_mismatch", "Resource does not conform to the expected model")
	ErrMissingModelRelationship = New(http.StatusConflict, "missing_model_relationship", "has_model relationship does not exist")

	// Repository communication errors
	ErrTransport = New(http.StatusBadGateway, "transport_error", "Unexpected response from the repository")

	// Stub server errors
	ErrNotFound   = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrConflict   = New(http.StatusConflict, "conflict", "Resource already exists")
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrInternal   = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
)

// NewPrecondition creates a precondition error with a custom message
func NewPrecondition(message string) *Error {
	return ErrPrecondition.WithMessage(message)
}

// NewModelMismatch describes a conformance failure naming both sides.
func NewModelMismatch(check, expected, actual string) *Error {
	return ErrModelMismatch.
		WithMessage(fmt.Sprintf("%s check failed, expected: '%s' actual: '%s'", check, expected, actual)).
		WithDetails(map[string]any{"check": check, "expected": expected, "actual": actual})
}

// NewMissingModelRelationship reports an absent has_model relationship for model.
func NewMissingModelRelationship(model string) *Error {
	return ErrMissingModelRelationship.
		WithMessage(fmt.Sprintf("has_model relationship does not exist for model %s", model)).
		WithDetails(map[string]any{"expected": model})
}

// NewTransport wraps a repository failure.
func NewTransport(message string, err error) *Error {
	return ErrTransport.WithMessage(message).WithInternal(err)
}

// NewBadRequest creates a bad request error with a custom message
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and ID
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// NewInternal creates an internal error with a message and optional wrapped error
func NewInternal(message string, err error) *Error {
	return &Error{
		HTTPStatus: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    message,
		Internal:   err,
	}
}
