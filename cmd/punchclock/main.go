package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"punchclock/internal/bootstrap"
	authdto "punchclock/internal/modules/auth/dto"
	"punchclock/internal/platform/config"
	apperrors "punchclock/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rt := &runtime{}
	err := newRootCmd(rt).ExecuteContext(ctx)
	stop()
	_ = rt.close()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime holds the lazily built App. The shell reuses one runtime across
// lines so identity and session state survive between commands.
type runtime struct {
	dataDir string
	apiURL  string

	app      *bootstrap.App
	restored bool
	inShell  bool
	stdin    *bufio.Reader
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "punchclock",
		Short:         "Punch clock work-session client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if !rt.inShell {
		root.PersistentFlags().StringVar(&rt.dataDir, "data-dir", config.DefaultDataDir(), "directory holding config, credentials and cache")
		root.PersistentFlags().StringVar(&rt.apiURL, "api-url", "", "remote API base url (overrides config)")
	}

	root.AddCommand(newLoginCmd(rt))
	root.AddCommand(newRegisterCmd(rt))
	root.AddCommand(newLogoutCmd(rt))
	root.AddCommand(newWhoAmICmd(rt))
	root.AddCommand(newSessionCmd(rt))
	root.AddCommand(newUserCmd(rt))
	root.AddCommand(newDirectoryCmd(rt))
	root.AddCommand(newMetricsCmd(rt))
	root.AddCommand(newShellCmd(rt))
	return root
}

func (rt *runtime) load(ctx context.Context) (*bootstrap.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	cfg, err := config.Load(rt.dataDir)
	if err != nil {
		return nil, err
	}
	if rt.apiURL != "" {
		cfg.APIURL = rt.apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.app = app
	return app, nil
}

// identity restores the persisted login at most once per runtime, then
// refreshes the session view so a snapshot left by an earlier run is checked
// against the server before any transition relies on it. The refresh honours
// the cache window; its failure is logged, not returned.
func (rt *runtime) identity(ctx context.Context) (*bootstrap.App, error) {
	app, err := rt.load(ctx)
	if err != nil {
		return nil, err
	}
	if rt.restored {
		return app, nil
	}
	rt.restored = true
	if !app.AuthCLI.IsAuthenticated() {
		app.AuthCLI.Restore(ctx)
	}
	if app.AuthCLI.IsAuthenticated() {
		if _, err := app.SessionCLI.Refresh(ctx, false); err != nil {
			app.Logger.Warn("session.startup_refresh.fail", "err", err)
		}
	}
	return app, nil
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

func (rt *runtime) requireIdentity(cmd *cobra.Command, _ []string) error {
	app, err := rt.identity(cmd.Context())
	if err != nil {
		return err
	}
	if !app.AuthCLI.IsAuthenticated() {
		return fmt.Errorf("%w: run `punchclock login` first", apperrors.ErrNotAuthenticated)
	}
	return nil
}

func (rt *runtime) requireAdmin(cmd *cobra.Command, args []string) error {
	if err := rt.requireIdentity(cmd, args); err != nil {
		return err
	}
	if !rt.app.AuthCLI.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return nil
}

func newLoginCmd(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := rt.secret(cmd, &password, "password", "Password"); err != nil {
				return err
			}
			app, err := rt.load(cmd.Context())
			if err != nil {
				return err
			}
			out, err := app.AuthCLI.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			rt.restored = true
			printIdentity(cmd, "signed in as", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" || email == "" {
				return fmt.Errorf("--name and --email are required")
			}
			if err := rt.secret(cmd, &password, "password", "Password"); err != nil {
				return err
			}
			app, err := rt.load(cmd.Context())
			if err != nil {
				return err
			}
			out, err := app.AuthCLI.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			rt.restored = true
			printIdentity(cmd, "registered", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := rt.load(cmd.Context())
			if err != nil {
				return err
			}
			app.AuthCLI.Logout(cmd.Context())
			rt.restored = true
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoAmICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := rt.identity(cmd.Context())
			if err != nil {
				return err
			}
			out, ok := app.AuthCLI.WhoAmI()
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			printIdentity(cmd, "signed in as", out)
			return nil
		},
	}
}

func newDirectoryCmd(rt *runtime) *cobra.Command {
	directory := &cobra.Command{Use: "directory", Short: "Local accounts used by offline login"}

	var input authdto.DirectoryAccountInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a local account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := rt.secret(cmd, &input.Password, "password", "Password"); err != nil {
				return err
			}
			app, err := rt.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.AuthCLI.AddDirectoryAccount(cmd.Context(), input); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", strings.ToLower(strings.TrimSpace(input.Email)))
			return nil
		},
	}
	add.Flags().StringVar(&input.ID, "id", "", "account id (defaults to the email)")
	add.Flags().StringVar(&input.Name, "name", "", "display name")
	add.Flags().StringVar(&input.Email, "email", "", "account email")
	add.Flags().StringVar(&input.Role, "role", "USER", "role: USER|ADMIN")
	add.Flags().StringVar(&input.Password, "password", "", "account password (prompted when omitted)")

	directory.AddCommand(add)
	return directory
}

func newMetricsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print client metrics in text exposition format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := rt.load(cmd.Context())
			if err != nil {
				return err
			}
			return app.Metrics.WriteText(cmd.OutOrStdout())
		},
	}
}

func printIdentity(cmd *cobra.Command, prefix string, out authdto.IdentityOutput) {
	mode := ""
	if out.Offline {
		mode = " (offline)"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> role=%s%s\n", prefix, out.Name, out.Email, out.Role, mode)
}
