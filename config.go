package cafeauth

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config holds everything a [Client] needs. Configure it before
// [Builder.Build]; the client keeps its own copy.
type Config struct {
	Backend    BackendConfig
	Session    SessionConfig
	Navigation NavigationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig locates the REST backend.
type BackendConfig struct {
	BaseURL          string
	AuthenticatePath string
	Timeout          time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig names the two persisted session entries.
type SessionConfig struct {
	CredentialKey string
	ProfileKey    string
}

/*
====================================
NAVIGATION CONFIG
====================================
*/

// NavigationConfig holds the console's well-known destinations.
type NavigationConfig struct {
	LoginPath        string
	UnauthorizedPath string
	HomePath         string
}

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8080/api",
			AuthenticatePath: "/authenticate",
			Timeout:          10 * time.Second,
		},
		Session: SessionConfig{
			CredentialKey: "token",
			ProfileKey:    "user",
		},
		Navigation: NavigationConfig{
			LoginPath:        "/login",
			UnauthorizedPath: "/no-autorizado",
			HomePath:         "/",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	// Backend
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("Backend BaseURL must be set")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("Backend BaseURL must be an absolute http(s) URL")
	}
	if !strings.HasPrefix(c.Backend.AuthenticatePath, "/") {
		return errors.New("Backend AuthenticatePath must start with /")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("Backend Timeout must be >= 0")
	}

	// Session
	if c.Session.CredentialKey == "" || c.Session.ProfileKey == "" {
		return errors.New("Session CredentialKey and ProfileKey must be set")
	}
	if c.Session.CredentialKey == c.Session.ProfileKey {
		return errors.New("Session CredentialKey and ProfileKey must differ")
	}

	// Navigation
	for name, p := range map[string]string{
		"LoginPath":        c.Navigation.LoginPath,
		"UnauthorizedPath": c.Navigation.UnauthorizedPath,
		"HomePath":         c.Navigation.HomePath,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Navigation " + name + " must start with /")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
