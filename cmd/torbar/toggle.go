package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/torbar/internal/controller"
)

// NewToggleCmd creates the toggle command.
func NewToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start or stop Tor and its proxy settings",
		Long: `Toggle stops a running Tor service and removes the proxy settings, or starts
a stopped one and installs them. The outcome is reported as a desktop
notification.

Starting and stopping the service and editing the nat table need
privileges. By default torbar runs those commands through "sudo -n", so a
sudoers rule without password is required, for example:

  %wheel ALL=(root) NOPASSWD: /usr/bin/systemctl start tor, /usr/bin/systemctl stop tor, /usr/bin/iptables

The command always exits 0; failures are shown as a notification.`,
		Args: cobra.NoArgs,
		RunE: runToggleCmd,
	}
}

// runToggleCmd executes the toggle command.
func runToggleCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd, getVerboseFlag(cmd))

	cfg, err := buildConfig(cmd)
	if err != nil {
		logger.Error("cannot toggle", "error", err)
		return nil
	}

	ctrl, err := controller.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("cannot toggle", "error", err)
		return nil
	}

	if err := ctrl.Toggle(cmd.Context()); err != nil {
		logger.Debug("toggle finished with error", "error", err)
	}
	return nil
}
