package cafeauth

import "context"

type deniedStatusContextKey struct{}

// withDeniedStatus marks ctx as belonging to a forced logout caused by a
// response with status.
func withDeniedStatus(ctx context.Context, status int) context.Context {
	return context.WithValue(ctx, deniedStatusContextKey{}, status)
}

// DeniedStatusFromContext returns the 401 or 403 status that caused the
// redirect a [Navigator] is handling. ok is false for ordinary navigation.
func DeniedStatusFromContext(ctx context.Context) (status int, ok bool) {
	if ctx == nil {
		return 0, false
	}
	status, ok = ctx.Value(deniedStatusContextKey{}).(int)
	return status, ok
}
