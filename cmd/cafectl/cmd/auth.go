package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agosto18/cafeauth"
	"github.com/agosto18/cafeauth/cmd/cafectl/internal/config"
)

func newLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the back office",
		Long: `Log in with a back-office account. Missing credentials are prompted for;
the password prompt does not echo when stdin is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustFromContext(cmd.Context())
			in := bufio.NewReader(cmd.InOrStdin())

			var err error
			if username == "" {
				if username, err = prompt(cmd, in, "Username: ", false); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd, in, "Password: ", true); err != nil {
					return err
				}
			}

			sess, err := cfg.Auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Logged in as %s", sess.Profile.DisplayName())
			printSession(cmd.OutOrStdout(), sess)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustFromContext(cmd.Context())
			cfg.Auth.Logout(cmd.Context())
			pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Logged out")
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustFromContext(cmd.Context())
			sess, err := cfg.Auth.CurrentSession(cmd.Context())
			if errors.Is(err, cafeauth.ErrSessionExpired) {
				return errors.New("session expired; run `cafectl login`")
			}
			if errors.Is(err, cafeauth.ErrNoSession) {
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), sess)
			return nil
		},
	}
}

func newOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Check where a console path leads for the current session",
		Example: `  cafectl open /productos
  cafectl open /login`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustFromContext(cmd.Context())
			dest, err := cfg.Auth.Navigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := pterm.Info.WithWriter(cmd.OutOrStdout())
			if dest.Redirected() {
				out = pterm.Warning.WithWriter(cmd.OutOrStdout())
			}
			out.Printfln("%s -> %s (%s)", dest.Requested, dest.Path, dest.Decision)
			return nil
		},
	}
}

func printSession(w io.Writer, sess *cafeauth.Session) {
	roles := "(none)"
	if len(sess.Roles) > 0 {
		roles = strings.Join(sess.Roles, ", ")
	}
	data := pterm.TableData{
		{"User", sess.Profile.Username},
		{"Name", sess.Profile.DisplayName()},
		{"Email", sess.Profile.Email},
		{"Roles", roles},
		{"Expires", sess.ExpiresAt.Local().Format(time.RFC1123)},
	}
	_ = pterm.DefaultTable.WithWriter(w).WithData(data).Render()
}

// prompt reads one line from in. Hidden prompts use the terminal directly
// when stdin is one.
func prompt(cmd *cobra.Command, in *bufio.Reader, label string, hidden bool) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)

	if f, ok := cmd.InOrStdin().(*os.File); ok && hidden && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSuffix(label, ": ")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
