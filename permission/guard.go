package permission

import "github.com/agosto18/cafeauth/jwt"

// Decision is the outcome of an access check.
type Decision uint8

const (
	// Allow renders the requested view.
	Allow Decision = iota
	// RedirectLogin sends the user to the login entry point.
	RedirectLogin
	// RedirectUnauthorized sends the user to the unauthorized page.
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "ALLOW"
	case RedirectLogin:
		return "REDIRECT_LOGIN"
	case RedirectUnauthorized:
		return "REDIRECT_UNAUTHORIZED"
	default:
		return "UNKNOWN"
	}
}

type requirementKind uint8

const (
	kindPublic requirementKind = iota
	kindAuthenticated
	kindRole
)

// Requirement describes what a destination demands of the current session.
// The zero value is Public.
type Requirement struct {
	kind requirementKind
	role string
}

// Public allows everyone, with or without a session.
func Public() Requirement {
	return Requirement{kind: kindPublic}
}

// Authenticated allows any session regardless of its roles.
func Authenticated() Requirement {
	return Requirement{kind: kindAuthenticated}
}

// RequireRole allows sessions holding role. The role may be given with or
// without the ROLE_ prefix. A blank role degrades to Authenticated.
func RequireRole(role string) Requirement {
	role = jwt.NormalizeRole(role)
	if role == "" {
		return Authenticated()
	}
	return Requirement{kind: kindRole, role: role}
}

// Role returns the required role, or "" for Public and Authenticated.
func (r Requirement) Role() string {
	return r.role
}

// IsPublic reports whether r admits callers without a session.
func (r Requirement) IsPublic() bool {
	return r.kind == kindPublic
}

func (r Requirement) String() string {
	switch r.kind {
	case kindAuthenticated:
		return "authenticated"
	case kindRole:
		return "role:" + r.role
	default:
		return "public"
	}
}

// Decide evaluates req against the roles of the current session. A nil roles
// means there is no session. The check is a UX convenience only; the backend
// enforces authorization on every request.
func Decide(req Requirement, roles *RoleSet) Decision {
	if req.kind == kindPublic {
		return Allow
	}
	if roles == nil {
		return RedirectLogin
	}
	if req.kind == kindAuthenticated {
		return Allow
	}
	// Has folds the bare and ROLE_-prefixed spellings together.
	if roles.Has(req.role) {
		return Allow
	}
	return RedirectUnauthorized
}
