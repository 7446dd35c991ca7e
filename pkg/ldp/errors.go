package ldp

import (
	"errors"
	"fmt"
	"net/http"
)

// Error describes a failed repository request. StatusCode is zero when the
// request never produced a response.
type Error struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: [%d] %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: [%d] %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func statusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsNotFound returns true if err is a 404 or 410 from the repository.
func IsNotFound(err error) bool {
	s := statusOf(err)
	return s == http.StatusNotFound || s == http.StatusGone
}

// IsConflict returns true if err is a 409 from the repository.
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

