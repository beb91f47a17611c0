package main

import (
	"github.com/spf13/cobra"

	"github.com/redmonkez12/taskdesk/cmd/taskctl/ui"
	"github.com/redmonkez12/taskdesk/internal/client"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit your profile",
	}
	cmd.AddCommand(a.profileShowCmd(), a.profileEditCmd())
	return cmd
}

func (a *app) profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.signedIn(cmd); err != nil {
				return err
			}
			u, err := a.api.Profile(cmd.Context())
			if err != nil {
				return err
			}
			ui.UserDetail(cmd.OutOrStdout(), u, false)
			return nil
		},
	}
}

func (a *app) profileEditCmd() *cobra.Command {
	var name, bio, avatar string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change name, bio or avatar",
		Long:  "Change name, bio or avatar. Pass an empty value (--bio \"\") to clear a field.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.signedIn(cmd); err != nil {
				return err
			}

			upd := client.ProfileUpdate{Name: name}
			if !cmd.Flags().Changed("name") {
				upd.Name = a.session.User().Name
			}
			if cmd.Flags().Changed("bio") {
				upd.Bio = &bio
			}
			if cmd.Flags().Changed("avatar") {
				upd.Avatar = &avatar
			}

			u, err := a.api.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return err
			}
			if err := a.session.UpdateUser(u); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), "Profile updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio (max 200 characters)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	return cmd
}
