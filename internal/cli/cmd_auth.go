package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/view"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Sign in",
		Long: `Sign in so that projects and tasks can be changed.

The identity is remembered until 'taskdeck logout'.`,
		Args: cobra.ExactArgs(2),
		RunE: opts.run(func(s *session, args []string) error {
			res, err := s.auth.Login(s.ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !res.OK {
				return deckerrors.ErrInvalidCredentials()
			}
			if s.json {
				return printJSON(s.out, res)
			}
			_, _ = fmt.Fprintf(s.out, "Signed in as %s\n", res.Identity.Username)
			return nil
		}),
	}
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, _ []string) error {
			if err := s.auth.Logout(s.ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(s.out, "Signed out")
			return nil
		}),
	}
}

func newWhoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, _ []string) error {
			u := s.auth.User()
			if s.json {
				return printJSON(s.out, map[string]any{"authenticated": u != nil, "user": u})
			}
			if u == nil {
				_, _ = fmt.Fprintln(s.out, "Guest (not signed in)")
				return nil
			}
			_, _ = fmt.Fprintf(s.out, "%s (signed in %s)\n", u.Username, view.FormatTime(u.LoggedInAt))
			return nil
		}),
	}
}
