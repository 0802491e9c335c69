package middleware

import (
	"context"
	"net/http"
)

// DeniedFunc is called for every 401 or 403 response.
type DeniedFunc func(ctx context.Context, statusCode int)

// IsDenied reports whether status is an authorization failure.
func IsDenied(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// ObserveDenied calls onDenied before returning a 401 or 403 response to the
// caller. The response itself is passed through untouched.
func ObserveDenied(onDenied DeniedFunc) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || resp == nil {
				return resp, err
			}
			if onDenied != nil && IsDenied(resp.StatusCode) {
				onDenied(r.Context(), resp.StatusCode)
			}
			return resp, nil
		})
	}
}
