// Package manifest records materialization history in a SQLite database.
//
// The copy engine itself is stateless; the CLI records each invocation's
// outcome here after the fact so `gwm history` can show what was mirrored
// where, and when.
package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// File statuses stored per mirrored path.
const (
	StatusCopied            = "copied"
	StatusSkippedVirtualEnv = "skipped_virtual_env"
	StatusSkippedOversize   = "skipped_oversize"
)

// Invocation is one recorded materialization run.
type Invocation struct {
	ID                 string
	SourceRoot         string
	TargetRoot         string
	StartedAt          time.Time
	Duration           time.Duration
	Copied             int
	SkippedVirtualEnvs int
	SkippedOversize    int
}

// FileRecord is one path's fate within an invocation.
type FileRecord struct {
	RelPath string
	Status  string
}

// Store manages the history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if necessary) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing when another gwm process touches the same database.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores one invocation with its per-file records, atomically.
func (s *Store) Record(ctx context.Context, inv Invocation, files []FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invocations
			(id, source_root, target_root, started_at, duration_ms,
			 copied, skipped_virtual_envs, skipped_oversize)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.SourceRoot, inv.TargetRoot, inv.StartedAt.UTC(),
		inv.Duration.Milliseconds(),
		inv.Copied, inv.SkippedVirtualEnvs, inv.SkippedOversize,
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}

	for _, f := range files {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invocation_files (invocation_id, rel_path, status)
			VALUES (?, ?, ?)`,
			inv.ID, f.RelPath, f.Status,
		)
		if err != nil {
			return fmt.Errorf("insert file record %s: %w", f.RelPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Recent returns the most recent invocations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Invocation, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_root, target_root, started_at, duration_ms,
		       copied, skipped_virtual_envs, skipped_oversize
		FROM invocations
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var invocations []Invocation
	for rows.Next() {
		var inv Invocation
		var durationMs int64
		if err := rows.Scan(
			&inv.ID, &inv.SourceRoot, &inv.TargetRoot, &inv.StartedAt,
			&durationMs, &inv.Copied, &inv.SkippedVirtualEnvs, &inv.SkippedOversize,
		); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		inv.Duration = time.Duration(durationMs) * time.Millisecond
		invocations = append(invocations, inv)
	}
	return invocations, rows.Err()
}

// Files returns the per-file records of one invocation.
func (s *Store) Files(ctx context.Context, invocationID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rel_path, status
		FROM invocation_files
		WHERE invocation_id = ?`, invocationID)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.RelPath, &f.Status); err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
