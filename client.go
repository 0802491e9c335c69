package cafeauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"

	"github.com/agosto18/cafeauth/jwt"
	"github.com/agosto18/cafeauth/middleware"
	"github.com/agosto18/cafeauth/permission"
	"github.com/agosto18/cafeauth/session"
)

const maxResponseBytes = 1 << 20

// Client is the console's session core: it logs users in and out, keeps the
// single session, authorizes outgoing API calls and decides navigation.
// A Client is safe for concurrent use.
type Client struct {
	config    Config
	store     *session.Store
	routes    *permission.Routes
	navigator Navigator
	bare      *http.Client
	authed    *http.Client
	log       logr.Logger
	metrics   *Metrics
	audit     *auditDispatcher
	now       func() time.Time
	closed    atomic.Bool
}

// Login exchanges username and password for a credential and makes it the
// current session, replacing any previous one. Every failure is an
// [*AuthenticationError] and leaves the stored session untouched.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	if c == nil || c.closed.Load() {
		return nil, &AuthenticationError{Err: ErrClientNotReady}
	}

	start := c.now()
	sess, err := c.login(ctx, username, password)
	c.metrics.Observe(MetricLoginLatency, c.now().Sub(start))

	if err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.emitAudit(ctx, AuditEvent{EventType: AuditLoginFailure, Username: username, Error: err.Error()})
		c.log.Info("login failed", "username", username, "error", err.Error())
		return nil, err
	}

	role := ""
	if len(sess.Roles) > 0 {
		role = sess.Roles[0]
	}
	c.metrics.Inc(MetricLoginSuccess)
	c.emitAudit(ctx, AuditEvent{EventType: AuditLoginSuccess, Username: username, Subject: sess.Subject, Role: role, Success: true})
	c.log.V(1).Info("login succeeded", "username", username, "role", role, "expiresAt", sess.ExpiresAt)
	return sess, nil
}

func (c *Client) login(ctx context.Context, username, password string) (*Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, &AuthenticationError{Err: ErrInvalidCredentials, Detail: "username and password are required"}
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Backend.BaseURL+c.config.Backend.AuthenticatePath, bytes.NewReader(body))
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.bare.Do(req)
	if err != nil {
		return nil, &AuthenticationError{Err: ErrBackendUnavailable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Err: ErrBackendUnavailable, Detail: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, authenticationStatusError(resp.StatusCode, responseDetail(data))
	}

	var out loginResponse
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, &AuthenticationError{StatusCode: resp.StatusCode, Err: ErrNoCredentialIssued, Detail: "unreadable response body"}
		}
	}
	if strings.TrimSpace(out.Token) == "" {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Err: ErrNoCredentialIssued}
	}

	claims, err := jwt.Decode(out.Token)
	if err != nil {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Err: err}
	}
	if claims.ExpiredAt(c.now()) {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Err: ErrSessionExpired, Detail: "backend issued an expired credential"}
	}

	sess := &Session{
		Profile:    out.User,
		Credential: out.Token,
		Subject:    claims.Subject,
		IssuedAt:   claims.Issued(),
		ExpiresAt:  claims.Expiry(),
	}
	if role := claims.NormalizedRole(); role != "" {
		sess.Roles = []string{role}
	}
	if sess.Profile.Username == "" {
		sess.Profile.Username = username
	}

	if err := c.store.Write(ctx, sess); err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	return sess, nil
}

// Logout ends the current session. It never fails; storage errors are
// logged and counted.
func (c *Client) Logout(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		c.metrics.Inc(MetricLogoutFailure)
		c.log.Error(err, "failed to clear session on logout")
		return
	}
	c.metrics.Inc(MetricLogout)
	c.emitAudit(ctx, AuditEvent{EventType: AuditLogout, Success: true})
}

// CurrentSession returns the live session, or an error wrapping
// [ErrNoSession]. An expired or unreadable session is cleared first.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}
	return c.readSession(ctx)
}

func (c *Client) readSession(ctx context.Context) (*Session, error) {
	sess, err := c.store.Read(ctx)
	if err == nil {
		return sess, nil
	}

	switch {
	case errors.Is(err, ErrSessionExpired):
		c.metrics.Inc(MetricSessionExpiredCleared)
		c.emitAudit(ctx, AuditEvent{EventType: AuditSessionExpired, Success: true})
	case errors.Is(err, ErrMalformedToken), errors.Is(err, session.ErrMalformedProfile):
		c.metrics.Inc(MetricSessionMalformedCleared)
		c.emitAudit(ctx, AuditEvent{EventType: AuditSessionMalformed, Success: true, Error: err.Error()})
	}
	if errors.Is(err, ErrStorageUnavailable) {
		c.log.Error(err, "failed to read session")
	}
	return nil, err
}

// TokenSource exposes the session as an oauth2.TokenSource. Each call reads
// the store, so a logout or expiry is seen by the very next request.
func (c *Client) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{client: c}
}

type sessionTokenSource struct {
	client *Client
}

var _ middleware.ContextTokenSource = sessionTokenSource{}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext reads the session under ctx. The authorized HTTP client
// calls it with the outgoing request's context.
func (s sessionTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	if s.client == nil {
		return nil, ErrClientNotReady
	}
	sess, err := s.client.readSession(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: sess.Credential,
		TokenType:   "Bearer",
		Expiry:      sess.ExpiresAt,
	}, nil
}

// HTTPClient returns the client for back-office API calls. Requests to the
// backend origin carry the current credential, and a 401 or 403 response
// from that origin ends the session and sends the user to the login path
// before the caller sees it. Requests to any other host go out untouched.
func (c *Client) HTTPClient() *http.Client {
	return c.authed
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.config.Backend.BaseURL
}

// Routes returns the route table used by [Client.Navigate].
func (c *Client) Routes() *permission.Routes {
	return c.routes
}

func (c *Client) countRequests() middleware.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Authorization") != "" {
				c.metrics.Inc(MetricRequestAuthorized)
			} else {
				c.metrics.Inc(MetricRequestAnonymous)
			}
			return next.RoundTrip(r)
		})
	}
}

// forceLogout runs for every denied response, whether or not a session is
// stored, so the store is always empty afterwards.
func (c *Client) forceLogout(ctx context.Context, status int) {
	c.metrics.Inc(MetricResponseDenied)

	ctx = context.WithoutCancel(ctx)
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(err, "failed to clear session after denied response", "status", status)
	}
	c.metrics.Inc(MetricForcedLogout)
	c.emitAudit(ctx, AuditEvent{
		EventType: AuditForcedLogout,
		Success:   true,
		Metadata:  map[string]string{"status": http.StatusText(status)},
	})
	c.log.Info("session ended by backend", "status", status)

	c.navigator.Redirect(withDeniedStatus(ctx, status), c.config.Navigation.LoginPath)
}

// Decide evaluates req against the current session.
func (c *Client) Decide(ctx context.Context, req permission.Requirement) permission.Decision {
	sess, _ := c.readSession(ctx)
	decision := permission.Decide(req, sess.RoleSet())
	c.countDecision(decision)
	return decision
}

// Navigate resolves p against the route table and returns where the user
// should end up. A logged-in user opening the login path is sent home.
func (c *Client) Navigate(ctx context.Context, p string) (Destination, error) {
	resolved, req, _ := c.routes.Resolve(p)

	sess, err := c.readSession(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			return Destination{}, err
		}
		sess = nil
	}

	if sess != nil && resolved == c.config.Navigation.LoginPath {
		c.countDecision(permission.Allow)
		return Destination{Requested: resolved, Path: c.config.Navigation.HomePath, Decision: permission.Allow}, nil
	}

	decision := permission.Decide(req, sess.RoleSet())
	c.countDecision(decision)

	dest := Destination{Requested: resolved, Path: resolved, Decision: decision}
	switch decision {
	case permission.RedirectLogin:
		dest.Path = c.config.Navigation.LoginPath
	case permission.RedirectUnauthorized:
		dest.Path = c.config.Navigation.UnauthorizedPath
	}
	return dest, nil
}

func (c *Client) countDecision(d permission.Decision) {
	switch d {
	case permission.Allow:
		c.metrics.Inc(MetricGuardAllow)
	case permission.RedirectLogin:
		c.metrics.Inc(MetricGuardRedirectLogin)
	case permission.RedirectUnauthorized:
		c.metrics.Inc(MetricGuardRedirectUnauthorized)
	}
}

// MetricsSnapshot returns the current counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped on a full buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Close flushes pending audit events. Login fails after Close.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.closed.Store(true)
	c.audit.Close()
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now()
	}
	c.audit.Emit(ctx, event)
}

// responseDetail extracts a display message from an error body.
func responseDetail(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	s := string(data)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
