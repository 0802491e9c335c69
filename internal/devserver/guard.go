package devserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/agosto18/cafeauth/jwt"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims of the request's bearer.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// requireAuth answers 401 unless the request carries a valid, unexpired
// bearer credential.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.metrics.reject("missing")
			writeError(w, http.StatusUnauthorized, "missing bearer credential")
			return
		}

		claims, err := s.issuer.Verify(token)
		if err != nil {
			s.metrics.reject("invalid")
			s.log.V(1).Info("rejected credential", "path", r.URL.Path, "reason", err.Error())
			writeError(w, http.StatusUnauthorized, "invalid or expired credential")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole answers 403 unless the verified credential carries role. It
// must run after requireAuth.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	role = jwt.NormalizeRole(role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer credential")
				return
			}
			if claims.NormalizedRole() != role {
				s.metrics.reject("role")
				writeError(w, http.StatusForbidden, "role "+role+" required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
