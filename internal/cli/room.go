package cli

import (
	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomFinishCmd())
	cmd.AddCommand(newRoomReopenCmd())
	cmd.AddCommand(newRoomPasswordCmd())
	cmd.AddCommand(newRoomVerifyCmd())
	cmd.AddCommand(newRoomDeleteCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var name, customID, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			if customID != "" {
				req["custom_id"] = customID
			}
			if password != "" {
				req["password"] = password
			}
			var result Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Room name (required)")
	cmd.Flags().StringVar(&customID, "id", "", "Custom room id (a code is generated if empty)")
	cmd.Flags().StringVar(&password, "password", "", "Room password (open room if empty)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Get("/api/v1/rooms/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList

			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoomFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <id>",
		Short: "Finish a room (board becomes read-only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/rooms/"+args[0]+"/finish", nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Room finished")
			return nil
		},
	}
}

func newRoomReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Reopen a finished room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/rooms/"+args[0]+"/reopen", nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Room reopened")
			return nil
		},
	}
}

func newRoomPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "password <id>",
		Short: "Set or clear a room's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"password": password}

			if err := client.Put("/api/v1/rooms/"+args[0]+"/password", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if password == "" {
				out.PrintMessage("Password removed")
			} else {
				out.PrintMessage("Password updated")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (empty clears protection)")

	return cmd
}

func newRoomVerifyCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a room password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"password": password}

			if err := client.Post("/api/v1/rooms/"+args[0]+"/verify-password", req, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Password accepted")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password to check (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRoomDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a room and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/rooms/" + args[0]); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Room deleted")
			return nil
		},
	}
}
