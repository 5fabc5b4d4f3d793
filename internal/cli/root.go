// Package cli implements hostelctl, the command-line client for the hostel API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hostelhub/hostel-api/internal/authstate"
	"github.com/hostelhub/hostel-api/internal/client"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/service"
	"github.com/spf13/cobra"
)

const defaultURL = "http://localhost:8080"

var errNotSignedIn = errors.New("not signed in: run `hostelctl login` first")

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{"error": err.Error()}
			if code := apperrors.GetCode(err); code != "" {
				errObj["code"] = code
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// app is the per-invocation state shared by every command.
type app struct {
	out    io.Writer
	url    string
	output string
	debug  bool

	creds   *Credentials
	client  *client.Client
	auth    *authstate.Context
	started bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:           "hostelctl",
		Short:         "Hostel management CLI",
		Long:          "Command-line client for the hostel API: complaints, leave, notices and dashboards.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.url, "url", defaultURL, "Hostel API base URL (env HOSTEL_URL)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log auth state transitions to stderr")

	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newSignupCmd(a))
	rootCmd.AddCommand(newWhoamiCmd(a))
	rootCmd.AddCommand(newComplaintsCmd(a))
	rootCmd.AddCommand(newLeaveCmd(a))
	rootCmd.AddCommand(newNoticesCmd(a))
	rootCmd.AddCommand(newDashboardCmd(a))
	return rootCmd
}

// init resolves the base URL (flag > HOSTEL_URL > credentials file > default) and builds the
// API client with any saved token for that URL.
func (a *app) init(cmd *cobra.Command) error {
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", a.output)
	}
	creds, err := LoadCredentials()
	if err != nil {
		return err
	}
	a.creds = creds

	if !cmd.Flags().Changed("url") {
		if v := strings.TrimSpace(os.Getenv("HOSTEL_URL")); v != "" {
			a.url = v
		} else if creds.URL != "" {
			a.url = creds.URL
		}
	}
	token := ""
	if sameURL(creds.URL, a.url) {
		token = creds.Token
	}

	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c, err := client.New(client.Options{BaseURL: a.url, Token: token, Logger: logger})
	if err != nil {
		return err
	}
	a.client = c
	a.auth = authstate.New(authstate.Options{
		Sessions: c,
		Resolver: service.NewIdentityResolver(service.IdentityResolverOptions{Store: c, Logger: logger}),
		Logger:   logger,
	})
	return nil
}

func (a *app) close() {
	if a.auth != nil {
		a.auth.Close()
	}
}

// session starts the auth context on first use and returns its settled state.
func (a *app) session(ctx context.Context) (authstate.State, error) {
	if !a.started {
		a.started = true
		if err := a.auth.Start(ctx); err != nil {
			return authstate.State{}, err
		}
	}
	return a.auth.WaitSettled(ctx)
}

// guard gates a command the way the route guard gates a page: it waits for the session to
// settle, re-resolves once when admin is required but missing, and reports the outcome.
func (a *app) guard(ctx context.Context, requireAdmin bool) error {
	if _, err := a.session(ctx); err != nil {
		return err
	}
	g := authstate.NewGuard(authstate.GuardOptions{RequireAdmin: requireAdmin})
	d, err := g.Run(ctx, a.auth)
	if err != nil {
		return err
	}
	switch d.State {
	case authstate.GuardAllowed:
		return nil
	case authstate.GuardUnauthenticated:
		a.forgetToken()
		return errNotSignedIn
	default:
		return apperrors.Forbidden("admin role required")
	}
}

// saveToken persists the client's current token for the active URL.
func (a *app) saveToken(email string) error {
	a.creds.URL = a.url
	a.creds.Token = a.client.Token()
	a.creds.Email = email
	return SaveCredentials(a.creds)
}

// forgetToken drops a saved token the server no longer accepts. Failures are ignored;
// the next run will find out again.
func (a *app) forgetToken() {
	if a.creds == nil || a.creds.Token == "" || !sameURL(a.creds.URL, a.url) {
		return
	}
	a.creds.Token = ""
	_ = SaveCredentials(a.creds)
}

func sameURL(x, y string) bool {
	return strings.TrimRight(strings.TrimSpace(x), "/") == strings.TrimRight(strings.TrimSpace(y), "/")
}
