package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/torbar/internal/model"
)

// FileName is the database file inside the history directory.
const FileName = "history.db"

// DefaultLimit is how many transitions List returns when asked for none.
const DefaultLimit = 20

// ErrNotFound is returned by Open when the database does not exist and
// CreateIfNotExists is false.
var ErrNotFound = errors.New("history database not found")

// DB stores status transitions.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging so a status
	// run writing never blocks a concurrent "torbar history" reader.
	EnableWAL bool
}

// DefaultOptions returns the options used by status runs.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the history database in dir.
func Open(ctx context.Context, dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, FileName)

	dsn := dbPath + "?mode=rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &DB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=1000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := h.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *DB) Path() string {
	return h.dbPath
}

// Close closes the database.
func (h *DB) Close() error {
	return h.db.Close()
}

func (h *DB) createTables(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		from_status TEXT NOT NULL DEFAULT '',
		to_status TEXT NOT NULL,
		bootstrap INTEGER NOT NULL DEFAULT 0,
		action TEXT NOT NULL DEFAULT 'none'
	);

	CREATE INDEX IF NOT EXISTS idx_transitions_timestamp ON transitions(timestamp);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// Record inserts a transition and returns its row id. A zero Timestamp is
// replaced with the current time.
func (h *DB) Record(ctx context.Context, tr model.Transition) (int64, error) {
	ts := tr.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO transitions (timestamp, from_status, to_status, bootstrap, action)
		 VALUES (?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339Nano),
		tr.From.String(),
		tr.To.String(),
		tr.Bootstrap,
		tr.Action.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record transition: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit transitions, newest first. A limit <= 0 uses
// DefaultLimit.
func (h *DB) List(ctx context.Context, limit int) ([]model.Transition, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, timestamp, from_status, to_status, bootstrap, action
		 FROM transitions
		 ORDER BY id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	var out []model.Transition
	for rows.Next() {
		var (
			tr               model.Transition
			ts, from, to, ac string
		)
		if err := rows.Scan(&tr.ID, &ts, &from, &to, &tr.Bootstrap, &ac); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		tr.Timestamp = parseTimestamp(ts)
		tr.From, _ = model.ParseStatus(from)
		tr.To, _ = model.ParseStatus(to)
		tr.Action = model.ParseAction(ac)
		out = append(out, tr)
	}
	return out, rows.Err()
}

var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts the formats written by Record and by SQLite's
// CURRENT_TIMESTAMP; anything else yields the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
