// Command cafeauth-devserver runs the development back-office API: a login
// endpoint issuing signed credentials and the guarded CRUD resources, seeded
// with an ADMIN and a MESERO account.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/zapr"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/agosto18/cafeauth/internal/devserver"
	"github.com/agosto18/cafeauth/internal/rate"
)

func main() {
	var (
		addr    string
		ttl     time.Duration
		verbose bool
		noSeed  bool

		redisAddr   string
		maxFailures int
	)
	flags := pflag.NewFlagSet("cafeauth-devserver", pflag.ExitOnError)
	flags.StringVar(&addr, "addr", "localhost:8080", "listen address")
	flags.DurationVar(&ttl, "ttl", 8*time.Hour, "credential lifetime")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every request")
	flags.BoolVar(&noSeed, "no-seed", false, "start without the sample accounts and rows")
	flags.StringVar(&redisAddr, "redis-addr", "", "Redis address; enables login throttling")
	flags.IntVar(&maxFailures, "max-login-failures", rate.DefaultConfig().MaxFailures, "failed logins allowed per window when throttling")
	_ = flags.Parse(os.Args[1:])

	zl, err := newZap(verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	log := zapr.NewLogger(zl)

	cfg := devserver.DefaultConfig()
	cfg.TTL = ttl
	if secret := os.Getenv("CAFE_DEVSERVER_SECRET"); secret != "" {
		cfg.Secret = []byte(secret)
	}

	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer client.Close()

		throttleCfg := rate.DefaultConfig()
		throttleCfg.MaxFailures = maxFailures
		throttleCfg.Prefix = "cafeauth:devserver:login:"
		if cfg.Throttle, err = rate.New(client, throttleCfg); err != nil {
			zl.Fatal("invalid throttle configuration", zap.Error(err))
		}
		zl.Info("login throttling enabled", zap.String("redis", redisAddr), zap.Int("maxFailures", maxFailures))
	}

	srv, err := devserver.New(cfg, log.WithName("devserver"))
	if err != nil {
		zl.Fatal("failed to create server", zap.Error(err))
	}
	if !noSeed {
		if err := srv.Seed(); err != nil {
			zl.Fatal("failed to seed", zap.Error(err))
		}
		zl.Info("seeded accounts",
			zap.String("admin", devserver.AdminUsername),
			zap.String("mesero", devserver.MeseroUsername),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	zl.Info("listening", zap.String("addr", addr), zap.String("api", "http://"+addr+"/api"))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server failed", zap.Error(err))
	}
}

func newZap(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
