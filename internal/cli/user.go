package cli

import (
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Profile and recent-rooms commands",
	}

	cmd.AddCommand(newUserProfileCmd())
	cmd.AddCommand(newUserNicknameCmd())
	cmd.AddCommand(newUserRecentCmd())

	return cmd
}

func newUserProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User

			if err := client.Get("/api/v1/users/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newUserNicknameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nickname <name>",
		Short: "Set your board nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"nickname": args[0]}
			var result User

			if err := client.Patch("/api/v1/users/me/nickname", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newUserRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Recently visited rooms",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recently visited rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RecentRoomList

			if err := client.Get("/api/v1/users/me/recent-rooms", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <room>",
		Short: "Remove one room from the recent list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/users/me/recent-rooms/" + args[0]); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Removed")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the recent rooms list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/users/me/recent-rooms"); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Cleared")
			return nil
		},
	})

	return cmd
}
