package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"crosscheck/internal/config"
	"crosscheck/internal/report"
	"crosscheck/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old stores must be deleted and rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID         string
	CreatedAt     time.Time
	DeviceA       string
	DeviceB       string
	Relationship  string
	Confidence    float64
	Discrepancies int
	Critical      int
}

// Open initializes or connects to the run database, acquiring an exclusive
// lock on the store directory first.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.StoreDir, "store.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "runstore", "open",
			"another crosscheck process holds the store", nil)
	}

	dbPath := filepath.Join(cfg.Paths.StoreDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
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
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection and the store lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); dbErr == nil {
			dbErr = unlockErr
		}
	}
	return dbErr
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

// SaveRun inserts one completed run, serializing the full report alongside
// the summary columns used for listing.
func (s *Store) SaveRun(ctx context.Context, rpt *report.ConflictReport) error {
	if rpt == nil || rpt.RunID == "" {
		return services.Wrap(services.ErrValidation, "runstore", "save", "report with run id required", nil)
	}
	payload, err := json.Marshal(rpt)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (
            run_id, created_at, device_a, device_b, relationship,
            confidence, discrepancies, critical, report_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rpt.RunID,
		rpt.GeneratedAt.UTC().Format(time.RFC3339Nano),
		rpt.Pairing.DeviceA.ID,
		rpt.Pairing.DeviceB.ID,
		rpt.Pairing.Relationship,
		rpt.Pairing.Confidence,
		len(rpt.Discrepancies),
		rpt.Histogram[report.SeverityCritical],
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at, device_a, device_b, relationship,
            confidence, discrepancies, critical
         FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var summary RunSummary
		var createdAt string
		if err := rows.Scan(
			&summary.RunID, &createdAt, &summary.DeviceA, &summary.DeviceB,
			&summary.Relationship, &summary.Confidence,
			&summary.Discrepancies, &summary.Critical,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			summary.CreatedAt = parsed
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// GetRun loads the full report of one run.
func (s *Store) GetRun(ctx context.Context, runID string) (*report.ConflictReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT report_json FROM runs WHERE run_id = ?", runID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "runstore", "get", "run "+runID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	var rpt report.ConflictReport
	if err := json.Unmarshal([]byte(payload), &rpt); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &rpt, nil
}

// DeleteRun removes one stored run.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "runstore", "delete", "run "+runID, nil)
	}
	return nil
}
