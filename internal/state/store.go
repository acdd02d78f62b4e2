// Package state persists the small amount of memory torbar keeps between
// invocations: the last derived status, the last bootstrap percent and
// whether an automatic proxy change has already been made.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/torbar/internal/fileutil"
	"github.com/nao1215/torbar/internal/model"
)

// Store reads and writes the state file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a Store for the file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted state. A missing, unreadable or malformed file
// yields model.DefaultPersistedState; absent fields keep their defaults.
func (s *Store) Load() model.PersistedState {
	st := model.DefaultPersistedState()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("state file unreadable, using defaults", "path", s.path, "error", err)
		}
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Debug("state file malformed, using defaults", "path", s.path, "error", err)
		return model.DefaultPersistedState()
	}
	st.Bootstrap = model.ClampPercent(st.Bootstrap)
	return st
}

// Save overwrites the state file. Failures are logged and swallowed; a lost
// write only costs one redundant reconciliation next run.
func (s *Store) Save(st model.PersistedState) {
	if err := s.save(st); err != nil {
		s.logger.Debug("failed to save state", "path", s.path, "error", err)
	}
}

func (s *Store) save(st model.PersistedState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(s.path, data, 0o600)
}
