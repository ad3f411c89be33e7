package main

import (
	"fmt"
	"strconv"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	clockv1 "github.com/mcdev12/turnclock/go/internal/api/clock/v1"
)

// NewDefaultsCommand creates the defaults command.
func NewDefaultsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Show the server's new-clock defaults and limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().GetDefaults(cmd.Context(), connect.NewRequest(&clockv1.GetDefaultsRequest{}))
			if err != nil {
				return err
			}
			d := resp.Msg
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "players: %d (max %d)\n", d.PlayerCount, d.MaxPlayers)
			fmt.Fprintf(cmd.OutOrStdout(), "seconds: %d (max %d)\n", d.AllowedSeconds, d.MaxAllowedSeconds)
			return nil
		},
	}
}

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Players int
	Seconds int
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a clock",
		Long: `Create a clock where every player gets the same time.

Unset flags take the server's defaults.

Example:
  clockctl create --players 3 --seconds 300`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createClock(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Players, "players", "p", 0, "number of players")
	cmd.Flags().IntVar(&opts.Seconds, "seconds", 0, "seconds allotted to each player")

	return cmd
}

func createClock(opts *CreateOptions, cmd *cobra.Command) error {
	client := opts.client()
	req := &clockv1.CreateClockRequest{
		PlayerCount:    int32(opts.Players),
		AllowedSeconds: int32(opts.Seconds),
	}

	if !cmd.Flags().Changed("players") || !cmd.Flags().Changed("seconds") {
		defaults, err := client.GetDefaults(cmd.Context(), connect.NewRequest(&clockv1.GetDefaultsRequest{}))
		if err != nil {
			return fmt.Errorf("failed to fetch defaults: %w", err)
		}
		if !cmd.Flags().Changed("players") {
			req.PlayerCount = defaults.Msg.PlayerCount
		}
		if !cmd.Flags().Changed("seconds") {
			req.AllowedSeconds = defaults.Msg.AllowedSeconds
		}
	}

	resp, err := client.CreateClock(cmd.Context(), connect.NewRequest(req))
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), resp.Msg)
	}
	return writeClock(cmd.OutOrStdout(), resp.Msg.Clock)
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().GetClock(cmd.Context(), connect.NewRequest(&clockv1.GetClockRequest{Code: args[0]}))
			if err != nil {
				return err
			}
			return opts.printClock(cmd, resp.Msg.Clock)
		},
	}
}

// NewHitCommand creates the hit command.
func NewHitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hit <code>",
		Short: "End the current player's turn, or start the clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().HitClock(cmd.Context(), connect.NewRequest(&clockv1.HitClockRequest{Code: args[0]}))
			if err != nil {
				return err
			}
			return opts.printClock(cmd, resp.Msg.Clock)
		},
	}
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <code> <player-index> <name>",
		Short: "Rename a player (index starts at 0)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid player index %q: %w", args[1], err)
			}

			resp, err := opts.client().RenamePlayer(cmd.Context(), connect.NewRequest(&clockv1.RenamePlayerRequest{
				Code:        args[0],
				PlayerIndex: int32(index),
				Name:        args[2],
			}))
			if err != nil {
				return err
			}
			return opts.printClock(cmd, resp.Msg.Clock)
		},
	}
}

func (o *RootOptions) printClock(cmd *cobra.Command, c *clockv1.Clock) error {
	if o.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), c)
	}
	return writeClock(cmd.OutOrStdout(), c)
}
