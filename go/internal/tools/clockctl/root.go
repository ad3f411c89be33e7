package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcdev12/turnclock/go/internal/api/clock/v1/clockv1connect"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Format  string // "json" | "text"
	Timeout time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func (o *RootOptions) client() clockv1connect.ClockServiceClient {
	return clockv1connect.NewClockServiceClient(&http.Client{Timeout: o.Timeout}, o.Server)
}

// NewRootCommand creates the root command for clockctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clockctl",
		Short: "Drive shared turn clocks",
		Long:  "clockctl talks to a turnclock server: create clocks, end turns, rename players and watch clocks live.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultServer := os.Getenv("TURNCLOCK_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", defaultServer, "server base URL (env TURNCLOCK_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	// Add subcommands
	cmd.AddCommand(NewDefaultsCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewHitCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
