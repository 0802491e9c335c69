package cafeauth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/agosto18/cafeauth/jwt"
	"github.com/agosto18/cafeauth/session"
)

var (
	// ErrNoSession means nobody is logged in.
	ErrNoSession = session.ErrNoSession
	// ErrSessionExpired accompanies ErrNoSession when the stored credential had expired.
	ErrSessionExpired = session.ErrSessionExpired
	// ErrStorageUnavailable wraps failures of the session storage backend.
	ErrStorageUnavailable = session.ErrStorageUnavailable
	// ErrMalformedToken is returned when a credential cannot be decoded.
	ErrMalformedToken = jwt.ErrMalformedToken

	// ErrNoCredentialIssued is returned when the backend accepted a login without returning a credential.
	ErrNoCredentialIssued = errors.New("no credential issued")
	// ErrInvalidCredentials is returned for blank or rejected username/password pairs.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthenticationFailed covers non-2xx authentication responses other than a rejection.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrBackendUnavailable is returned when the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrAuthorizationDenied matches 401 and 403 responses from the backend.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrClientNotReady is returned by methods on a nil or closed Client.
	ErrClientNotReady = errors.New("client not ready")
)

// AuthenticationError is returned by [Client.Login] for every failure.
// Detail carries the backend's message, when there was one, for display.
type AuthenticationError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *AuthenticationError) Error() string {
	msg := "login failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the underlying sentinel.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func authenticationStatusError(status int, detail string) *AuthenticationError {
	err := ErrAuthenticationFailed
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		err = ErrInvalidCredentials
	}
	return &AuthenticationError{StatusCode: status, Detail: detail, Err: err}
}
