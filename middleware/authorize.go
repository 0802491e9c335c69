package middleware

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// ContextTokenSource is a token source that reads its token under the
// request's context, so cancellation and deadlines reach the lookup.
type ContextTokenSource interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// Authorize attaches "Authorization: Bearer <credential>" when src yields a
// token. When it does not, the request is sent unchanged. The header is set,
// never appended, so authorizing an already-authorized request is a no-op.
//
// Authorize attaches the header to every request it sees; wrap it in
// [ForOrigin] to keep the credential on one host.
func Authorize(src oauth2.TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if src == nil {
				return next.RoundTrip(r)
			}
			tok, err := tokenFor(r.Context(), src)
			if err != nil || tok == nil || tok.AccessToken == "" {
				return next.RoundTrip(r)
			}

			out := r.Clone(r.Context())
			tok.SetAuthHeader(out)
			return next.RoundTrip(out)
		})
	}
}

func tokenFor(ctx context.Context, src oauth2.TokenSource) (*oauth2.Token, error) {
	if cs, ok := src.(ContextTokenSource); ok {
		return cs.TokenContext(ctx)
	}
	return src.Token()
}
