package backoffice

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/agosto18/cafeauth"
)

// ErrNotFound matches 404 responses.
var ErrNotFound = errors.New("not found")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's error message, when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches [cafeauth.ErrAuthorizationDenied] for 401 and 403, and
// [ErrNotFound] for 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case cafeauth.ErrAuthorizationDenied:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
