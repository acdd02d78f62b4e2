package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it runs a
// status invocation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "torbar",
		Short: "Tor status and toggle module for waybar",
		Long: `torbar reports whether this machine's traffic is routed through Tor and
keeps the proxy settings in line with the Tor service.

Run without arguments, torbar prints a single JSON object for a waybar
custom module and exits:

  {"text":"...","tooltip":"...","class":"tor-active","percentage":100}

waybar configuration example:

  "custom/tor": {
    "exec": "torbar",
    "return-type": "json",
    "interval": 5,
    "on-click": "torbar toggle"
  }`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStatusCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging on stderr")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: $XDG_CONFIG_HOME/torbar/config.yaml)")

	// Add subcommands
	cmd.AddCommand(NewToggleCmd())
	cmd.AddCommand(NewDoctorCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
