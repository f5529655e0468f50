package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/restokit/core/session"
)

// ErrNotLoggedIn is returned by commands that need a stored credential.
var ErrNotLoggedIn = errors.New("not logged in")

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in with an email address and store the issued API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.clients(ctx); err != nil {
				return err
			}
			resp, err := a.session.Login(ctx, args[0])
			if err != nil {
				return err
			}
			return a.renderAuth(resp, "Logged in")
		},
	}
}

func (a *App) registerCommand() *cobra.Command {
	var in session.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.clients(ctx); err != nil {
				return err
			}
			resp, err := a.session.Register(ctx, in)
			if err != nil {
				return err
			}
			return a.renderAuth(resp, "Account created")
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringSliceVar(&in.Roles, "role", nil, "role to request, repeatable")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) renderAuth(resp *session.AuthResponse, action string) error {
	if a.jsonOut {
		return a.printer.JSON(map[string]any{
			"user":    publicUser(resp.User),
			"message": resp.Message,
		})
	}
	if resp.User != nil {
		a.printer.Success("%s as %s", action, resp.User.DisplayName())
	} else {
		a.printer.Success("%s", action)
	}
	if msg := strings.TrimSpace(resp.Message); msg != "" {
		a.printer.Info("%s", msg)
	}
	return nil
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.clients(ctx); err != nil {
				return err
			}
			a.session.Logout(ctx)
			if a.jsonOut {
				return a.printer.JSON(map[string]bool{"success": true})
			}
			a.printer.Success("Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.clients(ctx); err != nil {
				return err
			}
			if !a.gw.HasValidCredential() {
				return ErrNotLoggedIn
			}
			user, err := a.session.CurrentUser(ctx)
			if err != nil {
				return err
			}
			return a.renderUser(user)
		},
	}
}

func (a *App) refreshKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-key",
		Short: "Exchange the stored API key for a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.clients(ctx); err != nil {
				return err
			}
			if !a.gw.HasValidCredential() {
				return ErrNotLoggedIn
			}
			resp, err := a.session.RefreshCredential(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printer.JSON(map[string]any{"refreshed": true, "message": resp.Message})
			}
			a.printer.Success("API key refreshed")
			return nil
		},
	}
}
