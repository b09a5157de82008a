package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer avoids SQLITE_BUSY between watcher workers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Has(ctx context.Context, path string, modTime time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed_recordings WHERE recording_key = ?`,
		Key(path, modTime),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: lookup %s: %w", path, err)
	}
	return n > 0, nil
}

func (s *sqliteStore) Mark(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_recordings
			(recording_key, source_path, mod_time, job_id, status, attempts, error_kind, error, output_dir, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(recording_key) DO UPDATE SET
			job_id = excluded.job_id,
			status = excluded.status,
			attempts = excluded.attempts,
			error_kind = excluded.error_kind,
			error = excluded.error,
			output_dir = excluded.output_dir,
			finished_at = excluded.finished_at`,
		rec.Key(), rec.SourcePath, rec.ModTime.UnixNano(), rec.JobID, string(rec.Status),
		rec.Attempts, rec.ErrorKind, rec.Error, rec.OutputDir, rec.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: mark %s: %w", rec.SourcePath, err)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT source_path, mod_time, job_id, status, attempts, error_kind, error, output_dir, finished_at
		FROM processed_recordings ORDER BY finished_at DESC, recording_key ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec               Record
			status            string
			modTime, finished int64
		)
		if err := rows.Scan(&rec.SourcePath, &modTime, &rec.JobID, &status, &rec.Attempts,
			&rec.ErrorKind, &rec.Error, &rec.OutputDir, &finished); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		rec.Status = models.JobStatus(status)
		rec.ModTime = time.Unix(0, modTime)
		rec.FinishedAt = time.Unix(0, finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
