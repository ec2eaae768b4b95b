package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reel/internal/config"
	"reel/internal/encode"
	"reel/internal/organizer"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; old databases must be deleted rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// release.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	dbPath := strings.TrimSpace(cfg.Paths.HistoryDB)
	if dbPath == "" {
		return nil, errors.New("history database path not configured")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
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
func (s *Store) Path() string { return s.path }

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

// JobRecord is one journaled conversion job.
type JobRecord struct {
	ID           string
	SourcePath   string
	OutputPath   string
	TargetFormat string
	Kind         string
	Tier         string
	Status       string
	Encoder      string
	Vendor       string
	Hardware     bool
	Attempts     int
	Detail       string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// OrganizeRecord is one journaled organize pass.
type OrganizeRecord struct {
	ID        int64
	Root      string
	Mode      string
	Scanned   int
	Matched   int
	Moved     int
	Skipped   int
	Errors    int
	Cancelled bool
	RanAt     time.Time
}

// RecordJob journals a finished conversion job.
func (s *Store) RecordJob(ctx context.Context, job *encode.Job) error {
	encoder, vendor := "", ""
	hardware := false
	if job.SelectedEncoder != nil {
		encoder = job.SelectedEncoder.Encoder
		vendor = string(job.SelectedEncoder.Vendor)
		hardware = job.SelectedEncoder.Hardware
	}
	detail := ""
	for _, attempt := range job.Attempts {
		if attempt.Err != "" {
			detail = attempt.Err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversion_jobs (
            id, source_path, output_path, target_format, kind, tier,
            status, encoder, encoder_vendor, hardware, attempts, detail,
            started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.SourcePath,
		job.OutputPath(),
		job.TargetFormat,
		job.Kind.String(),
		string(job.Tier),
		string(job.Status),
		encoder,
		vendor,
		boolToInt(hardware),
		len(job.Attempts),
		detail,
		job.StartedAt.UTC().Format(time.RFC3339Nano),
		job.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert conversion job: %w", err)
	}
	return nil
}

// RecordOrganize journals a finished organize pass.
func (s *Store) RecordOrganize(ctx context.Context, summary *organizer.Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organize_passes (
            root, mode, scanned, matched, moved, skipped, errors, cancelled, ran_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.Root,
		string(summary.Mode),
		summary.Scanned,
		summary.Matched,
		summary.Moved,
		summary.Skipped,
		summary.Errors,
		boolToInt(summary.Cancelled),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert organize pass: %w", err)
	}
	return nil
}

// RecentJobs returns the newest conversion jobs, most recent first.
func (s *Store) RecentJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, output_path, target_format, kind, tier,
		        status, encoder, encoder_vendor, hardware, attempts, detail,
		        started_at, finished_at
		   FROM conversion_jobs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversion jobs: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var rec JobRecord
		var hardware int
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.SourcePath, &rec.OutputPath, &rec.TargetFormat,
			&rec.Kind, &rec.Tier, &rec.Status, &rec.Encoder, &rec.Vendor,
			&hardware, &rec.Attempts, &rec.Detail, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan conversion job: %w", err)
		}
		rec.Hardware = hardware != 0
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentOrganizes returns the newest organize passes, most recent first.
func (s *Store) RecentOrganizes(ctx context.Context, limit int) ([]OrganizeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, mode, scanned, matched, moved, skipped, errors, cancelled, ran_at
		   FROM organize_passes ORDER BY ran_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query organize passes: %w", err)
	}
	defer rows.Close()

	var records []OrganizeRecord
	for rows.Next() {
		var rec OrganizeRecord
		var cancelled int
		var ranAt string
		if err := rows.Scan(&rec.ID, &rec.Root, &rec.Mode, &rec.Scanned, &rec.Matched,
			&rec.Moved, &rec.Skipped, &rec.Errors, &cancelled, &ranAt); err != nil {
			return nil, fmt.Errorf("scan organize pass: %w", err)
		}
		rec.Cancelled = cancelled != 0
		rec.RanAt, _ = time.Parse(time.RFC3339Nano, ranAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
