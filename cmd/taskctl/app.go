package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/taskdesk/cmd/taskctl/ui"
	"github.com/redmonkez12/taskdesk/internal/client"
	"github.com/redmonkez12/taskdesk/internal/client/session"
)

const defaultAPI = "http://localhost:5000"

var errNotSignedIn = errors.New("not signed in, run `taskctl login` first")

// app carries the state shared by every command of one invocation.
type app struct {
	apiURL      string
	sessionPath string

	api     *client.Client
	session *session.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage your taskdesk tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", envOr("TASKDESK_API", defaultAPI), "API base URL")
	rootCmd.PersistentFlags().StringVar(&a.sessionPath, "session", os.Getenv("TASKDESK_SESSION"), "Session cache file (default: user config dir)")

	rootCmd.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.forgotPasswordCmd(),
		a.resetPasswordCmd(),
		a.tasksCmd(),
		a.profileCmd(),
		a.passwordCmd(),
	)

	return rootCmd
}

func (a *app) init() error {
	path := a.sessionPath
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	a.api = client.New(a.apiURL)
	a.session = session.NewManager(session.NewStore(path), a.api)
	return nil
}

// restore bootstraps the cached session. A transport failure is reported as a
// warning and the cached identity is kept.
func (a *app) restore(cmd *cobra.Command) error {
	if err := a.session.Bootstrap(cmd.Context()); err != nil {
		if !a.session.Stale() {
			return err
		}
		ui.Warning(cmd.ErrOrStderr(), fmt.Sprintf("Could not reach %s: %v", a.apiURL, errors.Unwrap(err)))
	}
	return nil
}

// signedIn restores the session and fails when there is none.
func (a *app) signedIn(cmd *cobra.Command) error {
	if err := a.restore(cmd); err != nil {
		return err
	}
	if !a.session.Authenticated() {
		return errNotSignedIn
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
