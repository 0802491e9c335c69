package session

import "errors"

var (
	// ErrNoSession is returned by Read when nobody is logged in.
	ErrNoSession = errors.New("no active session")
	// ErrSessionExpired accompanies ErrNoSession when the stored credential had expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrMalformedProfile accompanies ErrNoSession when the stored profile could not be decoded.
	ErrMalformedProfile = errors.New("malformed session profile")
	// ErrInvalidSession is returned by Write for a session without a credential.
	ErrInvalidSession = errors.New("invalid session")
	// ErrStorageUnavailable wraps failures of the underlying storage.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)
