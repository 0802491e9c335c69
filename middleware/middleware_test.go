package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

type recorder struct {
	requests []*http.Request
	status   int
}

func (rec *recorder) RoundTrip(r *http.Request) (*http.Response, error) {
	rec.requests = append(rec.requests, r)
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{StatusCode: status, Header: http.Header{}, Body: http.NoBody, Request: r}, nil
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("no session") }

func TestAuthorizeAttachesBearer(t *testing.T) {
	rec := &recorder{}
	rt := Chain(rec, Authorize(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"})))

	req := httptest.NewRequest(http.MethodGet, "http://cafe.test/api/productos", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}

	if got := rec.requests[0].Header.Get("Authorization"); got != "Bearer abc" {
		t.Fatalf("expected bearer header, got %q", got)
	}
	if req.Header.Get("Authorization") != "" {
		t.Fatal("caller's request must not be mutated")
	}
}

func TestAuthorizeIsIdempotent(t *testing.T) {
	rec := &recorder{}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"})
	rt := Chain(rec, Authorize(src), Authorize(src))

	req := httptest.NewRequest(http.MethodGet, "http://cafe.test/api/pedidos", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}

	values := rec.requests[0].Header.Values("Authorization")
	if len(values) != 1 || values[0] != "Bearer abc" {
		t.Fatalf("expected exactly one bearer header, got %v", values)
	}
}

func TestAuthorizeWithoutSessionSendsUnchanged(t *testing.T) {
	for name, src := range map[string]oauth2.TokenSource{
		"nil source":  nil,
		"error":       failingSource{},
		"empty token": oauth2.StaticTokenSource(&oauth2.Token{}),
	} {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			rt := Chain(rec, Authorize(src))
			req := httptest.NewRequest(http.MethodGet, "http://cafe.test/api/pedidos", nil)

			if _, err := rt.RoundTrip(req); err != nil {
				t.Fatalf("round trip: %v", err)
			}
			if rec.requests[0] != req {
				t.Fatal("expected the original request to be forwarded")
			}
			if rec.requests[0].Header.Get("Authorization") != "" {
				t.Fatal("expected no authorization header")
			}
		})
	}
}

func TestObserveDenied(t *testing.T) {
	cases := []struct {
		status int
		denied bool
	}{
		{http.StatusOK, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
	}

	for _, tc := range cases {
		rec := &recorder{status: tc.status}
		var calls []int
		rt := Chain(rec, ObserveDenied(func(_ context.Context, status int) {
			calls = append(calls, status)
		}))

		resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://cafe.test/api/x", nil))
		if err != nil {
			t.Fatalf("status %d: round trip: %v", tc.status, err)
		}
		if resp.StatusCode != tc.status {
			t.Fatalf("status %d: response rewritten to %d", tc.status, resp.StatusCode)
		}
		if tc.denied != (len(calls) == 1) {
			t.Fatalf("status %d: expected denied=%v, got calls %v", tc.status, tc.denied, calls)
		}
	}
}

func TestObserveDeniedIgnoresTransportErrors(t *testing.T) {
	called := false
	rt := Chain(RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}), ObserveDenied(func(context.Context, int) { called = true }))

	if _, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://cafe.test/", nil)); err == nil {
		t.Fatal("expected transport error to propagate")
	}
	if called {
		t.Fatal("transport errors are not denials")
	}
}

func TestRequestID(t *testing.T) {
	rec := &recorder{}
	rt := Chain(rec, RequestID())

	if _, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://cafe.test/", nil)); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if rec.requests[0].Header.Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "http://cafe.test/", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got := rec.requests[1].Header.Get(RequestIDHeader); got != "fixed" {
		t.Fatalf("expected caller id preserved, got %q", got)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(&recorder{}, mark("a"), nil, mark("b"))
	if _, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://cafe.test/", nil)); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestOriginMatches(t *testing.T) {
	origin, err := ParseOrigin("http://cafe.test/api")
	if err != nil {
		t.Fatalf("ParseOrigin: %v", err)
	}

	cases := []struct {
		url  string
		want bool
	}{
		{"http://cafe.test/api/productos", true},
		{"http://CAFE.test:80/api/pedidos", true},
		{"http://cafe.test/", true},
		{"https://cafe.test/api/productos", false},
		{"http://cafe.test:8080/api/productos", false},
		{"http://other.test/api/productos", false},
		{"http://cafe.test.other.test/api", false},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.url)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.url, err)
		}
		if got := origin.Matches(u); got != tc.want {
			t.Fatalf("%s: expected match=%v, got %v", tc.url, tc.want, got)
		}
	}

	if (Origin{}).Matches(&url.URL{Scheme: "http", Host: "cafe.test"}) {
		t.Fatal("zero origin must match nothing")
	}
}

func TestParseOriginRejectsRelative(t *testing.T) {
	for _, raw := range []string{"/api", "ftp://cafe.test", "cafe.test", "http://"} {
		if _, err := ParseOrigin(raw); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}

	o, err := ParseOrigin("HTTPS://Cafe.Test:443/api/")
	if err != nil {
		t.Fatalf("ParseOrigin: %v", err)
	}
	if o.String() != "https://cafe.test" {
		t.Fatalf("unexpected origin %q", o.String())
	}
}

func TestForOriginKeepsCredentialOnBackend(t *testing.T) {
	origin, _ := ParseOrigin("http://cafe.test/api")
	rec := &recorder{}
	rt := Chain(rec, ForOrigin(origin,
		Authorize(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"})),
	))

	for _, target := range []string{
		"http://cafe.test/api/productos",
		"http://attacker.test/collect",
		"https://cafe.test/api/productos",
	} {
		if _, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, target, nil)); err != nil {
			t.Fatalf("%s: round trip: %v", target, err)
		}
	}

	if got := rec.requests[0].Header.Get("Authorization"); got != "Bearer abc" {
		t.Fatalf("backend request: expected bearer header, got %q", got)
	}
	for _, r := range rec.requests[1:] {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("%s: credential sent off the backend origin: %q", r.URL, got)
		}
	}
}

func TestForOriginIgnoresForeignDenials(t *testing.T) {
	origin, _ := ParseOrigin("http://cafe.test/api")
	rec := &recorder{status: http.StatusUnauthorized}
	var calls []string
	rt := Chain(rec, ForOrigin(origin, ObserveDenied(func(ctx context.Context, status int) {
		calls = append(calls, http.StatusText(status))
	})))

	resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://other.test/api/x", nil))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response rewritten to %d", resp.StatusCode)
	}
	if len(calls) != 0 {
		t.Fatalf("foreign 401 treated as denial: %v", calls)
	}

	if _, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://cafe.test/api/x", nil)); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected backend 401 to be a denial, got %v", calls)
	}
}

type contextSource struct {
	seen context.Context
}

func (s *contextSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

func (s *contextSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	s.seen = ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: "abc"}, nil
}

func TestAuthorizeReadsTokenUnderRequestContext(t *testing.T) {
	src := &contextSource{}
	rec := &recorder{}
	rt := Chain(rec, Authorize(src))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "http://cafe.test/api/pedidos", nil).WithContext(ctx)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}

	if src.seen != ctx {
		t.Fatal("expected the token lookup to run under the request context")
	}
	if got := rec.requests[0].Header.Get("Authorization"); got != "" {
		t.Fatalf("cancelled lookup must not attach a credential, got %q", got)
	}
}
