package cafeauth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"

	"github.com/agosto18/cafeauth/middleware"
	"github.com/agosto18/cafeauth/permission"
	"github.com/agosto18/cafeauth/session"
)

// Builder assembles a [Client]. A Builder can be used for one Build only.
type Builder struct {
	config Config

	storage   session.Storage
	transport http.RoundTripper
	navigator Navigator
	routes    *permission.Routes
	auditSink AuditSink
	log       logr.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		log:    logr.Discard(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStorage sets where the session is persisted. The default keeps it in
// process memory.
func (b *Builder) WithStorage(storage session.Storage) *Builder {
	b.storage = storage
	return b
}

// WithRedis persists the session in Redis under prefix.
func (b *Builder) WithRedis(client redis.UniversalClient, prefix string) *Builder {
	if client != nil {
		b.storage = session.NewRedisStorage(client, prefix)
	}
	return b
}

// WithTransport sets the base transport under the authorizer chain.
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithRoutes replaces [permission.DefaultRoutes].
func (b *Builder) WithRoutes(routes *permission.Routes) *Builder {
	b.routes = routes
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

func (b *Builder) WithLogger(log logr.Logger) *Builder {
	b.log = log
	return b
}

// WithClock sets the time source for expiry checks and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns the Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	log := b.log.WithName("cafeauth")

	storage := b.storage
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	routes := b.routes
	if routes == nil {
		routes = permission.DefaultRoutes()
	}
	navigator := b.navigator
	if navigator == nil {
		navigator = noopNavigator{}
	}
	base := b.transport
	if base == nil {
		base = http.DefaultTransport
	}
	origin, err := middleware.ParseOrigin(cfg.Backend.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		store: session.NewStore(storage,
			session.WithKeys(cfg.Session.CredentialKey, cfg.Session.ProfileKey),
			session.WithClock(now),
			session.WithLogger(log.WithName("session")),
		),
		routes:    routes,
		navigator: navigator,
		log:       log,
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink, log),
		now:       now,
	}

	// Login goes out on the bare transport: no stale bearer, and a rejected
	// password is not a denied session.
	c.bare = &http.Client{Transport: base, Timeout: cfg.Backend.Timeout}
	c.authed = &http.Client{
		Transport: middleware.Chain(base,
			middleware.RequestID(),
			middleware.ForOrigin(origin,
				middleware.Authorize(c.TokenSource()),
				c.countRequests(),
				middleware.ObserveDenied(c.forceLogout),
			),
		),
		Timeout: cfg.Backend.Timeout,
	}

	b.built = true
	return c, nil
}
