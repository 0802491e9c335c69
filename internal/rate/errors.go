package rate

import "errors"

var (
	// ErrRateLimited means the caller must wait for the window to pass.
	ErrRateLimited = errors.New("too many failed login attempts")
	// ErrRedisUnavailable wraps Redis failures.
	ErrRedisUnavailable = errors.New("rate limiter storage unavailable")
)
