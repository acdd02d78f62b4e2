package history

import (
	"context"
	"log/slog"

	"github.com/nao1215/torbar/internal/model"
)

// Recorder appends transitions on behalf of status runs. It opens the
// database per call so a status run that records nothing never touches it.
type Recorder struct {
	dir    string
	logger *slog.Logger
}

// NewRecorder returns a Recorder writing into dir.
func NewRecorder(dir string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{dir: dir, logger: logger}
}

// Record stores tr. Failures are logged and otherwise ignored.
func (r *Recorder) Record(ctx context.Context, tr model.Transition) {
	db, err := Open(ctx, r.dir, DefaultOptions())
	if err != nil {
		r.logger.Debug("history unavailable", "error", err)
		return
	}
	defer db.Close()

	if _, err := db.Record(ctx, tr); err != nil {
		r.logger.Debug("failed to record transition", "error", err)
		return
	}
	r.logger.Debug("transition recorded", "from", tr.From.String(), "to", tr.To.String(), "action", tr.Action.String())
}
