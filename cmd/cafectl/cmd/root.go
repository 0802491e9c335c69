// Package cmd holds the cafectl command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/zapr"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agosto18/cafeauth"
	"github.com/agosto18/cafeauth/backoffice"
	"github.com/agosto18/cafeauth/cmd/cafectl/internal/config"
)

// NewRootCommand returns a fresh cafectl command tree.
func NewRootCommand() *cobra.Command {
	var (
		zl      *zap.Logger
		release func() error
	)

	root := &cobra.Command{
		Use:   "cafectl",
		Short: "Café back-office console",
		Long: `cafectl is the terminal console for the café back office. Log in once and
the session is reused by every command until it expires or the API rejects it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}

			zl = newZapLogger(settings.Verbose, cmd.ErrOrStderr())
			log := zapr.NewLogger(zl)

			storage, closeStorage, err := settings.SessionStorage()
			if err != nil {
				return fmt.Errorf("open session storage: %w", err)
			}

			auth, err := cafeauth.New().
				WithConfig(settings.ClientConfig()).
				WithStorage(storage).
				WithNavigator(deniedNavigator(cmd.ErrOrStderr())).
				WithLogger(log).
				Build()
			if err != nil {
				_ = closeStorage()
				return err
			}
			release = func() error {
				auth.Close()
				return closeStorage()
			}

			log.V(1).Info("console ready", "server", auth.BaseURL(), "storage", settings.Storage)
			cmd.SetContext(config.InjectConfig(cmd.Context(), &config.GlobalConfig{
				Settings: settings,
				Auth:     auth,
				API:      backoffice.FromAuth(auth),
			}))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			var err error
			if release != nil {
				err = release()
			}
			if zl != nil {
				_ = zl.Sync()
			}
			return err
		},
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newStatusCommand(),
		newOpenCommand(),
	)
	root.AddCommand(resourceCommands()...)
	return root
}

// Execute runs cafectl and exits non-zero on error.
func Execute() {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newZapLogger(verbose bool, w io.Writer) *zap.Logger {
	if verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel), zap.Development())
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.WarnLevel))
}

// deniedNavigator reports a session ended by the API. It runs inside the
// HTTP pipeline, so it only prints.
func deniedNavigator(w io.Writer) cafeauth.Navigator {
	warn := pterm.Warning.WithWriter(w)
	return cafeauth.NavigatorFunc(func(ctx context.Context, path string) {
		if status, ok := cafeauth.DeniedStatusFromContext(ctx); ok {
			warn.Printfln("The API rejected the session (HTTP %d). You have been logged out; run `cafectl login` to continue.", status)
			return
		}
		warn.Printfln("Session ended; continue at %s.", path)
	})
}

var errNotLoggedIn = errors.New("not logged in; run `cafectl login`")
