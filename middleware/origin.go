package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Origin is a scheme and host pair. Default ports are dropped, so
// "https://cafe.test" and "https://cafe.test:443" are the same origin.
type Origin struct {
	Scheme string
	Host   string
}

// ParseOrigin returns the origin of an absolute http(s) URL.
func ParseOrigin(rawURL string) (Origin, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Origin{}, fmt.Errorf("parse origin: %w", err)
	}
	o := originOf(u)
	if o.Host == "" || (o.Scheme != "http" && o.Scheme != "https") {
		return Origin{}, fmt.Errorf("parse origin: %q is not an absolute http(s) URL", rawURL)
	}
	return o, nil
}

// Matches reports whether u belongs to o. The zero Origin matches nothing.
func (o Origin) Matches(u *url.URL) bool {
	if o.Host == "" || u == nil {
		return false
	}
	return originOf(u) == o
}

func (o Origin) String() string {
	if o.Host == "" {
		return ""
	}
	return o.Scheme + "://" + o.Host
}

func originOf(u *url.URL) Origin {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return Origin{Scheme: scheme, Host: host}
}

// ForOrigin applies mws only to requests sent to origin. Requests for any
// other host, including redirect hops away from origin, skip them.
func ForOrigin(origin Origin, mws ...Middleware) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		scoped := Chain(next, mws...)
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if origin.Matches(r.URL) {
				return scoped.RoundTrip(r)
			}
			return next.RoundTrip(r)
		})
	}
}
