package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RolePrefix marks a claim value as a role name ("ROLE_ADMIN").
const RolePrefix = "ROLE_"

// ErrMalformedToken is returned when credential text cannot be decoded.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the payload carried by a console credential.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var unverifiedParser = jwt.NewParser()

// Decode parses the claims segment of token without verifying its signature.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return claims, nil
}

// NormalizedRole returns the role claim without its prefix.
func (c *Claims) NormalizedRole() string {
	if c == nil {
		return ""
	}
	return NormalizeRole(c.Role)
}

// ExpiredAt reports whether the credential carries an expiry that now has
// reached. Credentials without an exp claim never expire on the client.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issued returns the iat claim, or the zero time when absent.
func (c *Claims) Issued() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// NormalizeRole strips RolePrefix from raw when present.
func NormalizeRole(raw string) string {
	raw = strings.TrimSpace(raw)
	return strings.TrimPrefix(raw, RolePrefix)
}

// PrefixedRole returns the prefixed spelling of role.
func PrefixedRole(role string) string {
	role = NormalizeRole(role)
	if role == "" {
		return ""
	}
	return RolePrefix + role
}
