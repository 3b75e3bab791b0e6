package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileStatus classifies a per-file outcome.
type FileStatus string

const (
	StatusCompleted FileStatus = "completed"
	StatusFailed    FileStatus = "failed"
	StatusSkipped   FileStatus = "skipped"
)

// Run is one batch invocation.
type Run struct {
	ID         int64
	Folder     string
	TargetBPM  float64
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
}

// FileRecord is one file's outcome within a run.
type FileRecord struct {
	RunID       int64
	Source      string
	Output      string
	DetectedBPM float64
	Factor      float64
	Status      FileStatus
	Error       string
	CompletedAt time.Time
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a starting batch and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, folder string, targetBPM float64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (folder, target_bpm, started_at) VALUES (?, ?, ?)",
		folder, targetBPM, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// RecordFile appends one file outcome to a run.
func (s *Store) RecordFile(ctx context.Context, rec FileRecord) error {
	completed := rec.CompletedAt
	if completed.IsZero() {
		completed = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_files (run_id, source, output, detected_bpm, factor, status, error, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Source, rec.Output, rec.DetectedBPM, rec.Factor,
		string(rec.Status), rec.Error, completed.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run file: %w", err)
	}
	return nil
}

// FinishRun stamps the run's totals and completion time.
func (s *Store) FinishRun(ctx context.Context, runID int64, total, succeeded, failed, skipped int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, failed = ?, skipped = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), total, succeeded, failed, skipped, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, folder, target_bpm, started_at, COALESCE(finished_at, ''), total, succeeded, failed, skipped
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.Folder, &run.TargetBPM, &started, &finished,
			&run.Total, &run.Succeeded, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FilesForRun returns a run's file outcomes in insertion order.
func (s *Store) FilesForRun(ctx context.Context, runID int64) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, COALESCE(output, ''), detected_bpm, factor, status, COALESCE(error, ''), completed_at
		 FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		var status, completed string
		if err := rows.Scan(&rec.RunID, &rec.Source, &rec.Output, &rec.DetectedBPM,
			&rec.Factor, &status, &rec.Error, &completed); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		rec.Status = FileStatus(status)
		rec.CompletedAt, _ = time.Parse(time.RFC3339, completed)
		records = append(records, rec)
	}
	return records, rows.Err()
}
