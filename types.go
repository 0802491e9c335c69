package cafeauth

import (
	"context"

	"github.com/agosto18/cafeauth/permission"
	"github.com/agosto18/cafeauth/session"
)

type (
	// Session is the current login. See [session.Session].
	Session = session.Session
	// Profile is the backend's user record. See [session.Profile].
	Profile = session.Profile
)

// Navigator moves the user to another screen. Redirect must not block on
// the user; it is called from inside the HTTP pipeline.
type Navigator interface {
	Redirect(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, path string)

// Redirect implements [Navigator].
func (f NavigatorFunc) Redirect(ctx context.Context, path string) {
	f(ctx, path)
}

type noopNavigator struct{}

func (noopNavigator) Redirect(context.Context, string) {}

// Destination is the outcome of [Client.Navigate].
type Destination struct {
	// Requested is the cleaned path that was asked for.
	Requested string
	// Path is where the user ends up.
	Path     string
	Decision permission.Decision
}

// Redirected reports whether Path differs from Requested.
func (d Destination) Redirected() bool {
	return d.Path != d.Requested
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  session.Profile `json:"user"`
}
