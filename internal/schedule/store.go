package schedule

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"epgdoctor/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale caches are cheap to rebuild, so a mismatch is an error
// telling the user to delete the file.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache database was written by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Program is one guide entry for an EPG identity.
type Program struct {
	EPGID int64
	Title string
	Start time.Time
	End   time.Time
}

// Store is a SQLite-backed cache of program rows implementing Validator.
type Store struct {
	db   *sql.DB
	path string
}

var _ Validator = (*Store)(nil)

// Open initializes or connects to the program cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// ReplacePrograms swaps the cached rows for one EPG identity in a single
// transaction.
func (s *Store) ReplacePrograms(ctx context.Context, epgID int64, programs []Program) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM programs WHERE epg_id = ?", epgID); err != nil {
		return fmt.Errorf("clear programs for %d: %w", epgID, err)
	}
	for _, p := range programs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO programs (epg_id, title, start_time, end_time) VALUES (?, ?, ?, ?)",
			epgID, p.Title, formatTime(p.Start), formatTime(p.End),
		); err != nil {
			return fmt.Errorf("insert program for %d: %w", epgID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit programs: %w", err)
	}
	return nil
}

// HasPrograms reports whether any cached row for epgID overlaps the window.
// A query failure wraps services.ErrUnavailable so callers can tell an outage
// apart from a clean negative.
func (s *Store) HasPrograms(ctx context.Context, epgID int64, window Window) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM programs WHERE epg_id = ? AND end_time >= ? AND start_time < ?",
		epgID, formatTime(window.Start), formatTime(window.End),
	).Scan(&count)
	if err != nil {
		return false, services.Wrap(services.ErrUnavailable, "schedule", "has_programs",
			fmt.Sprintf("query program cache for %d", epgID), err)
	}
	return count > 0, nil
}

// ProgramCount returns the number of cached rows for one EPG identity.
func (s *Store) ProgramCount(ctx context.Context, epgID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM programs WHERE epg_id = ?", epgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count programs for %d: %w", epgID, err)
	}
	return count, nil
}

// Times are stored as fixed-width UTC RFC 3339 strings so lexicographic
// comparison in SQL matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
