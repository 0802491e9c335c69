package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agosto18/cafeauth"
	"github.com/agosto18/cafeauth/backoffice"
	"github.com/agosto18/cafeauth/session"
)

// Storage backends accepted by --storage.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// EnvPrefix prefixes every environment override, e.g. CAFE_SERVER.
const EnvPrefix = "CAFE"

// Settings is the merged view of flags, CAFE_* variables and config.yaml,
// in that order of precedence.
type Settings struct {
	Server    string        `mapstructure:"server"`
	Storage   string        `mapstructure:"storage"`
	RedisAddr string        `mapstructure:"redis_addr"`
	StateDir  string        `mapstructure:"state_dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Verbose   bool          `mapstructure:"verbose"`
}

// DefaultStateDir returns ~/.cafeauth.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cafeauth"
	}
	return filepath.Join(home, ".cafeauth")
}

// RegisterFlags adds the global flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	defaults := cafeauth.DefaultConfig()
	flags.String("server", defaults.Backend.BaseURL, "back-office API base URL")
	flags.String("storage", StorageFile, "where the session is kept: file, memory or redis")
	flags.String("redis-addr", "", "Redis address for --storage redis")
	flags.String("state-dir", DefaultStateDir(), "directory holding config.yaml and session.json")
	flags.Duration("timeout", defaults.Backend.Timeout, "API request timeout")
	flags.BoolP("verbose", "v", false, "debug logging")
}

// Load merges flags with the environment and the config file in the state dir.
// A missing config file is not an error.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Settings, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"server":     "server",
		"storage":    "storage",
		"redis_addr": "redis-addr",
		"state_dir":  "state-dir",
		"timeout":    "timeout",
		"verbose":    "verbose",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}

	if dir := v.GetString("state_dir"); dir != "" {
		v.SetConfigFile(filepath.Join(dir, "config.yaml"))
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the storage selection.
func (s *Settings) Validate() error {
	switch s.Storage {
	case StorageFile:
		if s.StateDir == "" {
			return errors.New("state dir must be set for file storage")
		}
	case StorageMemory:
	case StorageRedis:
		if s.RedisAddr == "" {
			return errors.New("--redis-addr is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage %q (want file, memory or redis)", s.Storage)
	}
	return nil
}

// ClientConfig returns the library configuration for s.
func (s *Settings) ClientConfig() cafeauth.Config {
	cfg := cafeauth.DefaultConfig()
	if s.Server != "" {
		cfg.Backend.BaseURL = s.Server
	}
	if s.Timeout > 0 {
		cfg.Backend.Timeout = s.Timeout
	}
	cfg.Metrics.Enabled = s.Verbose
	return cfg
}

// SessionStorage opens the configured backend. The returned func releases it.
func (s *Settings) SessionStorage() (session.Storage, func() error, error) {
	switch s.Storage {
	case StorageMemory:
		return session.NewMemoryStorage(), func() error { return nil }, nil
	case StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		return session.NewRedisStorage(client, session.DefaultRedisPrefix), client.Close, nil
	default:
		fileStorage, err := session.NewFileStorage(filepath.Join(s.StateDir, "session.json"))
		if err != nil {
			return nil, nil, err
		}
		return fileStorage, func() error { return nil }, nil
	}
}

type contextKey string

const configKey contextKey = "cafectl-config"

// GlobalConfig is what every command needs. The root command builds it and
// stores it in the command context.
type GlobalConfig struct {
	Settings *Settings
	Auth     *cafeauth.Client
	API      *backoffice.Client
}

// InjectConfig adds cfg to ctx.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext returns the config stored by InjectConfig.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext is FromContext for commands that run after the root
// command's pre-run hook.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("cafectl: config not found in context")
	}
	return cfg
}
