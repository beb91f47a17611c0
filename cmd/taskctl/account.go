package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/taskdesk/cmd/taskctl/ui"
)

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ui.Registration(&name, &email, &password); err != nil {
				return err
			}

			u, err := a.session.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}

			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("Welcome, %s! You are signed in as %s.", u.Name, u.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("TASKDESK_PASSWORD", ""), "Password")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ui.Credentials(&email, &password); err != nil {
				return err
			}

			u, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("Signed in as %s <%s>.", u.Name, u.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("TASKDESK_PASSWORD", ""), "Password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd); err != nil {
				return err
			}
			if !a.session.Authenticated() {
				ui.Subtle(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			ui.UserDetail(cmd.OutOrStdout(), a.session.User(), a.session.Stale())
			return nil
		},
	}
}

func (a *app) forgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email yourself a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ui.Ask("Email", &email); err != nil {
				return err
			}

			msg, err := a.api.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			if err := ui.AskSecret("New password", &password); err != nil {
				return err
			}

			msg, err := a.api.ResetPassword(cmd.Context(), token, password)
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Token from the reset email")
	cmd.Flags().StringVar(&password, "password", envOr("TASKDESK_PASSWORD", ""), "New password")
	return cmd
}

func (a *app) passwordCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Long:  "Change your password. Other signed-in devices are signed out; this one keeps working.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.signedIn(cmd); err != nil {
				return err
			}
			if current == "" || next == "" {
				if err := ui.PasswordChange(&current, &next); err != nil {
					return err
				}
			}

			token, err := a.api.ChangePassword(cmd.Context(), current, next)
			if err != nil {
				return err
			}
			if err := a.session.ReplaceToken(token); err != nil {
				return err
			}

			ui.Success(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")
	return cmd
}
