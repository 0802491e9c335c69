// Package permission decides whether the current session may open a console
// destination.
//
// # Decisions
//
// [Decide] maps a [Requirement] and the session's [RoleSet] to one of [Allow],
// [RedirectLogin] or [RedirectUnauthorized]. It is pure and is re-evaluated on
// every navigation; callers must not cache its result.
//
// Role names are compared after normalization, so "ADMIN" and "ROLE_ADMIN"
// denote the same role on both sides of the comparison.
//
// # Architecture boundaries
//
// This package is in-memory only. It does not read the session store; the
// caller passes the roles (or nil when nobody is logged in).
//
// # What this package must NOT do
//
//   - Access storage or the network.
//   - Import cafeauth or session.
//   - Act as a security boundary: the backend enforces authorization itself.
package permission
