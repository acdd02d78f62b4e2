package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/torbar/internal/config"
	"github.com/nao1215/torbar/internal/engine"
	"github.com/nao1215/torbar/internal/model"
)

// runStatusCmd prints the status record. It exits 0 whatever happens so
// the bar always gets a line to render; problems only reach stderr.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd, getVerboseFlag(cmd))

	cfg, err := buildConfig(cmd)
	if err != nil {
		logger.Warn("falling back to default configuration", "error", err)
		cfg = config.NewConfig()
	}

	e, err := engine.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Warn("status unavailable", "error", err)
		return writeRecord(cmd.OutOrStdout(), model.NewStatusRecord(model.StatusOff, 0))
	}
	return writeRecord(cmd.OutOrStdout(), e.Run(cmd.Context()))
}

// writeRecord writes rec as a single JSON line. HTML escaping is off so the
// icons and tooltip text reach the bar verbatim.
func writeRecord(w io.Writer, rec model.StatusRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}
