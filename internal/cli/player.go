package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Scoreboard player commands",
	}

	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerAddCmd())
	cmd.AddCommand(newPlayerRemoveCmd())
	cmd.AddCommand(newPlayerRenameCmd())
	cmd.AddCommand(newPlayerScoreCmd())
	cmd.AddCommand(newPlayerResetCmd())
	cmd.AddCommand(newPlayerClearCmd())

	return cmd
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <room>",
		Short: "List a room's players by score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerList

			if err := client.Get("/api/v1/rooms/"+args[0]+"/players", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayerAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <room>",
		Short: "Add a player to a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			var result map[string]string

			if err := client.Post("/api/v1/rooms/"+args[0]+"/players", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Added player " + result["id"])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <room> <player>",
		Short: "Remove a player from a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/rooms/" + args[0] + "/players/" + args[1]); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Player removed")
			return nil
		},
	}
}

func newPlayerRenameCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <room> <player>",
		Short: "Rename a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}

			if err := client.Patch("/api/v1/rooms/"+args[0]+"/players/"+args[1], req, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Player renamed")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <room> <player> <amount>",
		Short: "Adjust a player's score by a signed amount",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[2])
			if err != nil {
				return err
			}

			req := map[string]int{"amount": amount}

			if err := client.Post("/api/v1/rooms/"+args[0]+"/players/"+args[1]+"/score", req, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Score updated")
			return nil
		},
	}
}

func newPlayerResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <room>",
		Short: "Reset every player's score to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/rooms/"+args[0]+"/players/reset", nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Scores reset")
			return nil
		},
	}
}

func newPlayerClearCmd() *cobra.Command {
	var keepSelf bool

	cmd := &cobra.Command{
		Use:   "clear <room>",
		Short: "Remove every player from a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/rooms/" + args[0] + "/players/clear"
			if keepSelf {
				path += "?keep_self=true"
			}

			if err := client.Post(path, nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Board cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepSelf, "keep-self", false, "Keep your own linked player")

	return cmd
}
