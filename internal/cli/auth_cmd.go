package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password and save the session",
		Example: `  # Password from the environment
  HOSTEL_PASSWORD=... hostelctl login --email asha@hostel.test

  # Password from stdin
  echo "$PASS" | hostelctl login --email asha@hostel.test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("HOSTEL_PASSWORD")
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required: use --password, HOSTEL_PASSWORD or stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			st, err := a.auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.saveToken(st.User.Email); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			return a.printState(st.User, st.IsAdmin, st.Profile)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prefer HOSTEL_PASSWORD or stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.auth.SignOut(cmd.Context())
			if saveErr := a.saveToken(""); saveErr != nil {
				return fmt.Errorf("save credentials: %w", saveErr)
			}
			if err != nil {
				return fmt.Errorf("signed out locally; server sign-out failed: %w", err)
			}
			_, _ = fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	var in domainauth.SignUpInput

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a student account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("HOSTEL_PASSWORD")
			}
			if err := a.auth.SignUp(cmd.Context(), in); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "Registered %s; run `hostelctl login --email %s` to sign in\n", in.Email, in.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password, at least 6 characters (or HOSTEL_PASSWORD)")
	cmd.Flags().StringVar(&in.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&in.RoomNumber, "room", "", "Room number")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in principal, role and profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if !st.Authenticated() {
				a.forgetToken()
				return errNotSignedIn
			}
			if fresh {
				if err := a.auth.RefreshUserData(cmd.Context()); err != nil {
					return err
				}
				st = a.auth.State()
			}
			return a.printState(st.User, st.IsAdmin, st.Profile)
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Bypass cached role assignments")
	return cmd
}

func (a *app) printState(user *domainauth.User, isAdmin bool, profile *domainauth.Profile) error {
	if user == nil {
		return errNotSignedIn
	}
	role := string(domainauth.RoleStudent)
	if isAdmin {
		role = string(domainauth.RoleAdmin)
	}
	if a.output == "json" {
		return printJSON(a.out, map[string]any{"user": user, "role": role, "profile": profile})
	}
	name, room := "-", "-"
	if profile != nil {
		name = profile.FullName
		room = deref(profile.RoomNumber)
	}
	return printTable(a.out, []string{"ID", "EMAIL", "ROLE", "NAME", "ROOM"},
		[][]string{{user.ID, user.Email, role, name, room}})
}
