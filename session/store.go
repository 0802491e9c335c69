package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/agosto18/cafeauth/jwt"
)

// Default storage keys.
const (
	DefaultCredentialKey = "token"
	DefaultProfileKey    = "user"
)

// Store persists at most one session in a [Storage] under two keys: the raw
// credential and the encoded profile.
type Store struct {
	storage       Storage
	credentialKey string
	profileKey    string
	now           func() time.Time
	log           logr.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithKeys overrides the credential and profile storage keys. Empty values
// keep the defaults.
func WithKeys(credentialKey, profileKey string) Option {
	return func(s *Store) {
		if credentialKey != "" {
			s.credentialKey = credentialKey
		}
		if profileKey != "" {
			s.profileKey = profileKey
		}
	}
}

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore returns a Store backed by storage.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:       storage,
		credentialKey: DefaultCredentialKey,
		profileKey:    DefaultProfileKey,
		now:           time.Now,
		log:           logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the current session. It returns an error wrapping
// [ErrNoSession] when nobody is logged in. When the stored credential is
// expired or unreadable the store clears itself first, and the error also
// wraps [ErrSessionExpired], [jwt.ErrMalformedToken] or [ErrMalformedProfile].
func (s *Store) Read(ctx context.Context) (*Session, error) {
	values, err := s.storage.Get(ctx, s.credentialKey, s.profileKey)
	if err != nil {
		return nil, err
	}

	credential := values[s.credentialKey]
	blob := values[s.profileKey]
	if credential == "" || blob == "" {
		return nil, ErrNoSession
	}

	claims, err := jwt.Decode(credential)
	if err != nil {
		return nil, s.discard(ctx, "malformed credential", err)
	}
	if claims.ExpiredAt(s.now()) {
		return nil, s.discard(ctx, "expired credential", ErrSessionExpired)
	}

	profile, err := DecodeProfile(blob)
	if err != nil {
		return nil, s.discard(ctx, "malformed profile", err)
	}

	var roles []string
	if role := claims.NormalizedRole(); role != "" {
		roles = []string{role}
	}

	return &Session{
		Profile:    profile,
		Roles:      roles,
		Credential: credential,
		Subject:    claims.Subject,
		IssuedAt:   claims.Issued(),
		ExpiresAt:  claims.Expiry(),
	}, nil
}

// Write replaces whatever session is stored with sess. Only the credential
// and profile are persisted; roles are rederived on every Read.
func (s *Store) Write(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Credential == "" {
		return ErrInvalidSession
	}
	blob, err := EncodeProfile(sess.Profile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return s.storage.Set(ctx, map[string]string{
		s.credentialKey: sess.Credential,
		s.profileKey:    blob,
	})
}

// Clear removes both entries. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Remove(ctx, s.credentialKey, s.profileKey)
}

func (s *Store) discard(ctx context.Context, reason string, cause error) error {
	s.log.V(1).Info("discarding stored session", "reason", reason)
	err := fmt.Errorf("%w: %w", ErrNoSession, cause)
	if clearErr := s.Clear(ctx); clearErr != nil {
		s.log.Error(clearErr, "failed to clear stored session", "reason", reason)
		return errors.Join(err, clearErr)
	}
	return err
}
