package session

import (
	"time"

	"github.com/agosto18/cafeauth/permission"
)

// Profile is the user record returned by the backend at login. It never
// carries the password or the credential.
type Profile struct {
	ID         int64  `json:"id,omitempty"`
	Username   string `json:"username"`
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellido"`
	Email      string `json:"email"`
}

// DisplayName returns "GivenName FamilyName", falling back to Username.
func (p Profile) DisplayName() string {
	switch {
	case p.GivenName != "" && p.FamilyName != "":
		return p.GivenName + " " + p.FamilyName
	case p.GivenName != "":
		return p.GivenName
	default:
		return p.Username
	}
}

// Session is who is currently logged in. Roles are derived from the
// credential's role claim each time the session is read.
type Session struct {
	Profile Profile
	// Roles holds normalized role names.
	Roles []string
	// Credential is the raw bearer value.
	Credential string

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RoleSet returns the session's roles as a set, or nil for a nil session.
func (s *Session) RoleSet() *permission.RoleSet {
	if s == nil {
		return nil
	}
	return permission.NewRoleSet(s.Roles...)
}

// HasRole reports whether the session holds role in either spelling.
func (s *Session) HasRole(role string) bool {
	return s.RoleSet().Has(role)
}
