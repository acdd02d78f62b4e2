package bootstrap

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/nao1215/torbar/internal/command"
	"github.com/nao1215/torbar/internal/config"
)

// Source returns the most recent log lines of a unit, oldest first.
type Source interface {
	Lines(ctx context.Context) ([]string, error)
}

// Journal reads lines with journalctl(1).
type Journal struct {
	unit    string
	lines   int
	timeout time.Duration
	runner  command.Runner
}

// NewJournal returns a Source reading the last n lines of unit.
func NewJournal(unit string, n int, timeout time.Duration, runner command.Runner) *Journal {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Journal{unit: unit, lines: n, timeout: timeout, runner: runner}
}

// Lines runs "journalctl -u <unit> -n <lines> --no-pager".
func (j *Journal) Lines(ctx context.Context) ([]string, error) {
	out, err := command.RunTimeout(ctx, j.runner, j.timeout,
		"journalctl", "-u", j.unit, "-n", strconv.Itoa(j.lines), "--no-pager")
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// Probe reports bootstrap progress from a Source.
type Probe struct {
	source Source
	logger *slog.Logger
}

// NewProbe returns a Probe over source.
func NewProbe(source Source, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{source: source, logger: logger}
}

// NewJournalProbe builds a Probe reading the configured unit's journal.
func NewJournalProbe(cfg *config.Config, logger *slog.Logger) *Probe {
	return NewProbe(NewJournal(cfg.ServiceUnit, cfg.JournalLines, cfg.ProbeTimeout, nil), logger)
}

// Percent returns the current bootstrap percent. A failed query reports 0.
func (p *Probe) Percent(ctx context.Context) int {
	lines, err := p.source.Lines(ctx)
	if err != nil {
		p.logger.Debug("bootstrap probe failed", "error", err)
		return 0
	}
	return ParseProgress(lines)
}
