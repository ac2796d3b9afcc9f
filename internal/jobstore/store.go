// Package jobstore persists export job history in SQLite so completed and
// failed jobs survive daemon restarts.
package jobstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/export"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrNotFound indicates no job row exists for the requested id.
var ErrNotFound = errors.New("job not found")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store implements export.Recorder on a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database under the configured log
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JobDBPath()
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{db: db, path: dbPath}
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
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Record upserts a job snapshot. The export manager calls this on creation
// and on every terminal transition.
func (s *Store) Record(ctx context.Context, job export.Job) error {
	if ctx == nil {
		ctx = context.Background()
	}
	finished := ""
	if !job.FinishedAt.IsZero() {
		finished = job.FinishedAt.UTC().Format(time.RFC3339Nano)
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO export_jobs (id, output_path, status, error, created_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				status = excluded.status,
				error = excluded.error,
				finished_at = excluded.finished_at`,
			job.ID, job.OutputPath, string(job.Status), job.Error,
			job.CreatedAt.UTC().Format(time.RFC3339Nano), finished)
		return err
	})
}

// Get returns one job row by id.
func (s *Store) Get(ctx context.Context, id string) (export.Job, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, output_path, status, error, created_at, finished_at FROM export_jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return export.Job{}, ErrNotFound
	}
	return job, err
}

// List returns all job rows, newest first.
func (s *Store) List(ctx context.Context) ([]export.Job, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, output_path, status, error, created_at, finished_at FROM export_jobs ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []export.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (export.Job, error) {
	var (
		job      export.Job
		status   string
		created  string
		finished string
	)
	if err := row.Scan(&job.ID, &job.OutputPath, &status, &job.Error, &created, &finished); err != nil {
		return export.Job{}, err
	}
	job.Status = export.Status(status)
	if created != "" {
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return export.Job{}, fmt.Errorf("parse created_at: %w", err)
		}
		job.CreatedAt = ts
	}
	if finished != "" {
		ts, err := time.Parse(time.RFC3339Nano, finished)
		if err != nil {
			return export.Job{}, fmt.Errorf("parse finished_at: %w", err)
		}
		job.FinishedAt = ts
	}
	return job, nil
}
