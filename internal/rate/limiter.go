package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config tunes a [Limiter].
type Config struct {
	// MaxFailures is how many failed logins a window allows before
	// further attempts are refused.
	MaxFailures int
	// Window is how long a run of failures is remembered, counted from the
	// first failure.
	Window time.Duration
	// PerAddress also counts failures per client address.
	PerAddress bool
	// Prefix namespaces the counters in a shared Redis.
	Prefix string
}

// DefaultConfig allows five failures per quarter hour.
func DefaultConfig() Config {
	return Config{
		MaxFailures: 5,
		Window:      15 * time.Minute,
		PerAddress:  true,
		Prefix:      "cafeauth:login:",
	}
}

// Limiter throttles failed logins with fixed-window Redis counters, keyed
// by username and optionally by client address.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New returns a Limiter on client.
func New(client redis.UniversalClient, cfg Config) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("rate: redis client is nil")
	}
	if cfg.MaxFailures <= 0 {
		return nil, errors.New("rate: MaxFailures must be > 0")
	}
	if cfg.Window <= 0 {
		return nil, errors.New("rate: Window must be > 0")
	}
	return &Limiter{redis: client, config: cfg}, nil
}

// Allow returns [ErrRateLimited] once username, or addr when per-address
// counting is on, has used up its failures for the window.
func (l *Limiter) Allow(ctx context.Context, username, addr string) error {
	for _, key := range l.keys(username, addr) {
		count, err := l.redis.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count >= int64(l.config.MaxFailures) {
			return ErrRateLimited
		}
	}
	return nil
}

// Fail records a failed login.
func (l *Limiter) Fail(ctx context.Context, username, addr string) error {
	for _, key := range l.keys(username, addr) {
		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		// The window starts at the first failure.
		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
		}
	}
	return nil
}

// Reset forgets the failures of username. Address counters are left to
// expire so one good login cannot clear a spraying client.
func (l *Limiter) Reset(ctx context.Context, username string) error {
	if err := l.redis.Del(ctx, l.userKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Failures returns the failures recorded for username in the current window.
func (l *Limiter) Failures(ctx context.Context, username string) (int, error) {
	count, err := l.redis.Get(ctx, l.userKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}

// RetryAfter returns how long until the longest-lived counter for username
// and addr expires. It is zero when nothing is counted.
func (l *Limiter) RetryAfter(ctx context.Context, username, addr string) time.Duration {
	var longest time.Duration
	for _, key := range l.keys(username, addr) {
		ttl, err := l.redis.PTTL(ctx, key).Result()
		if err == nil && ttl > longest {
			longest = ttl
		}
	}
	return longest
}

func (l *Limiter) keys(username, addr string) []string {
	keys := []string{l.userKey(username)}
	if l.config.PerAddress && addr != "" {
		keys = append(keys, l.config.Prefix+"addr:"+addr)
	}
	return keys
}

func (l *Limiter) userKey(username string) string {
	return l.config.Prefix + "user:" + username
}
