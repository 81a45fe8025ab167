package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/errors"
	"github.com/felixgeelhaar/leasehold/internal/session"
	"github.com/felixgeelhaar/leasehold/internal/tui"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your marketplace session",
		Long: `Manage your marketplace session.

The session token is stored in ~/.leasehold/auth.json (see auth.token_file)
and revalidated against the server whenever a command needs it.

Subcommands:
  login     Login with email and password
  register  Create an account and login
  logout    Logout and remove the stored token
  status    Show the current session

Examples:
  leasehold auth login --email tess@example.com
  leasehold auth register --role owner
  leasehold auth status --format json
  leasehold auth logout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	authCmd.AddCommand(
		newAuthLoginCmd(),
		newAuthRegisterCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)
	return authCmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		Long: `Login with your email and password.

Missing values are asked for interactively when running in a terminal.
On success the session token is saved and your dashboard route is printed.

Examples:
  leasehold auth login --email tess@example.com --password secret
  leasehold auth login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (email == "" || password == "") && tui.ShouldPrompt() {
				if err := tui.PromptLogin(&email, &password); err != nil {
					return err
				}
			}
			if strings.TrimSpace(email) == "" {
				return errors.NewMissingFieldError("email")
			}
			if password == "" {
				return errors.NewMissingFieldError("password")
			}

			cc, err := commandContextFrom(cmd)
			if err != nil {
				return err
			}
			sess, err := replaceableSession(cmd)
			if err != nil {
				return err
			}

			result := sess.Login(cmd.Context(), email, password)
			if !result.Success {
				return resultError("login", result, cc.Config.API.BaseURL)
			}
			return printSignedIn(cmd, cc, "Logged in", sess.State(), result)
		},
	}

	loginCmd.Flags().StringVar(&email, "email", "", "email address")
	loginCmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return loginCmd
}

func newAuthRegisterCmd() *cobra.Command {
	var req api.RegisterRequest
	var role string

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and login",
		Long: `Create a marketplace account and login with it.

Every field is required. Missing values are asked for interactively when
running in a terminal. --role is one of tenant, owner or admin.

Examples:
  leasehold auth register --first-name Tess --last-name Tenant \
    --email tess@example.com --password secret --role tenant`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = api.Role(strings.ToLower(strings.TrimSpace(role)))
			if req.Role != "" && !req.Role.Valid() {
				return errors.NewUnknownRoleError(role)
			}

			if tui.ShouldPrompt() {
				if err := tui.PromptRegister(&req); err != nil {
					return err
				}
			}
			if flag := missingRegisterFlag(req); flag != "" {
				return errors.NewMissingFieldError(flag)
			}

			cc, err := commandContextFrom(cmd)
			if err != nil {
				return err
			}
			sess, err := replaceableSession(cmd)
			if err != nil {
				return err
			}

			result := sess.Register(cmd.Context(), req)
			if !result.Success {
				return resultError("registration", result, cc.Config.API.BaseURL)
			}
			return printSignedIn(cmd, cc, "Registered", sess.State(), result)
		},
	}

	flags := registerCmd.Flags()
	flags.StringVar(&req.FirstName, "first-name", "", "first name")
	flags.StringVar(&req.LastName, "last-name", "", "last name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	flags.StringVar(&role, "role", "", "account role: tenant, owner, admin")
	return registerCmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and remove the stored token",
		Long: `Logout of the marketplace.

The server is asked to invalidate the session when a token is stored. The local
token is removed whether or not the server could be reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := commandContextFrom(cmd)
			if err != nil {
				return err
			}
			sess, err := replaceableSession(cmd)
			if err != nil {
				return err
			}

			sess.Logout(cmd.Context())

			if cc.Config.Output.Format != "text" {
				f, err := cc.Formatter(cmd)
				if err != nil {
					return err
				}
				return f.Format(map[string]any{"status": sess.State().Status()})
			}
			styles := cc.Styles()
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("✓ Logged out"))
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Long: `Show the current session.

A stored token is revalidated with the server first. A token the server
rejects is removed and the session is reported as anonymous.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := commandContextFrom(cmd)
			if err != nil {
				return err
			}
			before := storedToken(cc)
			sess, err := currentSession(cmd)
			if err != nil {
				return err
			}
			st := sess.State()
			notice := sessionNotice(st, before, storedToken(cc))

			view := newStatusView(st, cc.Config.API.BaseURL, cc.Store.Path(), notice, time.Now())
			f, err := cc.Formatter(cmd)
			if err != nil {
				return err
			}
			return f.Format(view)
		},
	}
}

// currentSession returns the process session carried by the command's
// context, restored from the token store on first use.
func currentSession(cmd *cobra.Command) (*session.Session, error) {
	p, err := sessionProvider(cmd)
	if err != nil {
		return nil, err
	}
	return p.Session(cmd.Context())
}

// replaceableSession returns the process session without revalidating the
// stored token. Login, register and logout overwrite or discard it anyway.
func replaceableSession(cmd *cobra.Command) (*session.Session, error) {
	p, err := sessionProvider(cmd)
	if err != nil {
		return nil, err
	}
	return p.SessionWithoutRestore()
}

func sessionProvider(cmd *cobra.Command) (*session.Provider, error) {
	p, ok := session.FromContext(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("command %q ran without a session", cmd.CommandPath())
	}
	return p, nil
}

// storedToken reads the token file, treating an unreadable file as empty.
func storedToken(cc *CommandContext) string {
	token, err := cc.Store.Get()
	if err != nil {
		cc.Logger.WithError(err).Debug("token file unreadable")
		return ""
	}
	return token
}

// signedInView is the structured output of login and register.
type signedInView struct {
	Success    bool      `json:"success" yaml:"success"`
	RedirectTo string    `json:"redirectTo" yaml:"redirectTo"`
	User       *api.User `json:"user" yaml:"user"`
}

func printSignedIn(cmd *cobra.Command, cc *CommandContext, verb string, st session.State, result session.Result) error {
	if cc.Config.Output.Format != "text" {
		f, err := cc.Formatter(cmd)
		if err != nil {
			return err
		}
		return f.Format(signedInView{Success: true, RedirectTo: result.RedirectTo, User: st.User})
	}

	styles := cc.Styles()
	out := cmd.OutOrStdout()
	name := ""
	role := ""
	if st.User != nil {
		name = st.User.FullName()
		role = string(st.User.Role)
	}
	fmt.Fprintf(out, "%s %s\n",
		styles.Success.Render("✓ "+verb+" as"),
		styles.Value.Render(fmt.Sprintf("%s (%s)", name, role)))
	fmt.Fprintf(out, "  %s %s\n", styles.Label.Render("Dashboard:"), styles.Value.Render(result.RedirectTo))
	return nil
}

func missingRegisterFlag(req api.RegisterRequest) string {
	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return "first-name"
	case strings.TrimSpace(req.LastName) == "":
		return "last-name"
	case strings.TrimSpace(req.Email) == "":
		return "email"
	case req.Password == "":
		return "password"
	case req.Role == "":
		return "role"
	}
	return ""
}
