package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/torbar/internal/history"
	"github.com/nao1215/torbar/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent status transitions",
		Long: `History lists the status changes recorded by status runs, newest first.

Transitions are stored in $XDG_DATA_HOME/torbar/history.db while
history.enabled is true (the default).

Examples:
  torbar history
  torbar history -n 50
  torbar history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", history.DefaultLimit, "Maximum number of transitions to show")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	setupLogger(cmd, getVerboseFlag(cmd))

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	w, err := reportWriter(cmd)
	if err != nil {
		return err
	}

	transitions, err := loadTransitions(cmd, cfg.HistoryDir, limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(transitions)
	return err
}

// loadTransitions reads the newest transitions. A database that was never
// created yields an empty list.
func loadTransitions(cmd *cobra.Command, dir string, limit int) ([]model.Transition, error) {
	db, err := history.Open(cmd.Context(), dir, history.Options{})
	if errors.Is(err, history.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	return db.List(cmd.Context(), limit)
}
