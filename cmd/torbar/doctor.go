package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/torbar/internal/model"
	"github.com/nao1215/torbar/internal/pipeline"
	"github.com/nao1215/torbar/internal/report"
)

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the Tor service and proxy settings",
		Long: `Doctor inspects every part of the Tor routing setup and prints a report:

- whether the Tor service is active and how far it has bootstrapped
- whether the SOCKS5 listener answers
- whether traffic currently leaves through Tor
- which proxy settings, nat rules and browser flags are installed
- what the next status run would do about it

Doctor only reads; it never starts services or changes settings.

Examples:
  torbar doctor
  torbar doctor --json
  torbar doctor --markdown > tor-report.md`,
		Args: cobra.NoArgs,
		RunE: runDoctorCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runDoctorCmd executes the doctor command.
func runDoctorCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd, getVerboseFlag(cmd))

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	w, err := reportWriter(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.NewDoctor(cfg, logger)
	if err != nil {
		return err
	}

	diag := model.NewDiagnosis(cfg.ServiceUnit)
	if err := p.Execute(cmd.Context(), diag); err != nil {
		return fmt.Errorf("diagnosis interrupted: %w", err)
	}

	_, err = w.WriteDiagnosis(diag)
	return err
}

// reportWriter picks the writer selected by the --json and --markdown flags.
func reportWriter(cmd *cobra.Command) (report.Writer, error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	format := report.FormatText
	switch {
	case jsonOut:
		format = report.FormatJSON
	case markdownOut:
		format = report.FormatMarkdown
	}
	return report.NewWriter(format, cmd.OutOrStdout(), getVersion())
}
