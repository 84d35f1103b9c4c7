package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DatabaseName is the file name of the history database.
const DatabaseName = "history.db"

// timestampLayout is fixed width so stored timestamps sort chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned by GetRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// Store is the SQLite backed run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, DatabaseName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		patterns TEXT NOT NULL,
		paths TEXT NOT NULL,
		mode TEXT NOT NULL,
		has_match INTEGER NOT NULL DEFAULT 0,
		searched INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		stats TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun inserts run and sets its ID.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	patterns, err := json.Marshal(run.Patterns)
	if err != nil {
		return fmt.Errorf("failed to serialize patterns: %w", err)
	}
	paths, err := json.Marshal(run.Paths)
	if err != nil {
		return fmt.Errorf("failed to serialize paths: %w", err)
	}
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	query := `
	INSERT INTO runs (timestamp, fingerprint, patterns, paths, mode, has_match, searched, errors, stats)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		run.Timestamp.UTC().Format(timestampLayout),
		run.Fingerprint,
		string(patterns),
		string(paths),
		run.Mode,
		run.HasMatch,
		run.Searched,
		run.Errors,
		string(stats),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

const selectRuns = `
	SELECT id, timestamp, fingerprint, patterns, paths, mode, has_match, searched, errors, stats
	FROM runs
`

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := selectRuns + " ORDER BY timestamp DESC, id DESC"
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// ListRunsByFingerprint returns the runs of one query, newest first.
func (s *Store) ListRunsByFingerprint(ctx context.Context, fingerprint string) ([]*Run, error) {
	query := selectRuns + " WHERE fingerprint = ? ORDER BY timestamp DESC, id DESC"
	return s.queryRuns(ctx, query, fingerprint)
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	runs, err := s.queryRuns(ctx, selectRuns+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return runs[0], nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run       Run
			timestamp string
			patterns  string
			paths     string
			stats     string
		)
		if err := rows.Scan(
			&run.ID,
			&timestamp,
			&run.Fingerprint,
			&patterns,
			&paths,
			&run.Mode,
			&run.HasMatch,
			&run.Searched,
			&run.Errors,
			&stats,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		if err := json.Unmarshal([]byte(patterns), &run.Patterns); err != nil {
			return nil, fmt.Errorf("failed to parse patterns of run %d: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(paths), &run.Paths); err != nil {
			return nil, fmt.Errorf("failed to parse paths of run %d: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(stats), &run.Stats); err != nil {
			return nil, fmt.Errorf("failed to parse stats of run %d: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// timestampFormats are the layouts SQLite may hand back.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
