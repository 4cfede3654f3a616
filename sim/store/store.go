// Package store persists simulation runs and their year-by-year market state
// in SQLite. *Store implements sim.Recorder.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wnowak10/syst/sim"
	"github.com/wnowak10/syst/sim/store/migrations"
	"github.com/wnowak10/syst/sim/trace"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var _ sim.Recorder = (*Store)(nil)

// RunRow is a persisted run.
type RunRow struct {
	ID         string
	RunIndex   int
	Seed       int64
	ConfigJSON string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store provides SQLite-backed persistence for simulation runs.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
	newID func() string
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now, newID: uuid.NewString}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// BeginRun inserts a running run and returns its generated id.
func (s *Store) BeginRun(ctx context.Context, run int, seed int64, cfg sim.Config) (string, error) {
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	id := s.newID()
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (id, run_index, seed, config_json, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, run, seed, string(encoded), StatusRunning, toMillis(s.now()),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordYear stores the population weights and every school's state for one
// year in a single transaction.
func (s *Store) RecordYear(ctx context.Context, runID string, rec trace.YearRecord) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin year tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_years (run_id, year, families, weight_prestige, weight_efficacy, weight_cost) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rec.Year, rec.Families, rec.Weights.Prestige, rec.Weights.Efficacy, rec.Weights.Cost,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run year: %w", err)
	}
	for _, sc := range rec.Schools {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO school_years (run_id, year, school_id, endowment, prestige) VALUES (?, ?, ?, ?, ?)`,
			runID, rec.Year, sc.ID, sc.Endowment, sc.Prestige,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert school year: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit year: %w", err)
	}
	return nil
}

// FinishRun marks the run completed, or failed with runErr's message.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	status, msg := StatusCompleted, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, msg, toMillis(s.now()), runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %q not found", runID)
	}
	return nil
}

// Runs lists persisted runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunRow, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, run_index, seed, config_json, status, error, started_at, finished_at FROM runs ORDER BY started_at, run_index`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var (
			row        RunRow
			startedAt  int64
			finishedAt sql.NullInt64
		)
		if err := rows.Scan(&row.ID, &row.RunIndex, &row.Seed, &row.ConfigJSON, &row.Status, &row.Error, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		row.StartedAt = fromMillis(startedAt)
		if finishedAt.Valid {
			t := fromMillis(finishedAt.Int64)
			row.FinishedAt = &t
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Years loads the year records of a run in year order.
func (s *Store) Years(ctx context.Context, runID string) ([]trace.YearRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT year, families, weight_prestige, weight_efficacy, weight_cost FROM run_years WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run years: %w", err)
	}
	var years []trace.YearRecord
	index := make(map[int]int)
	for rows.Next() {
		var rec trace.YearRecord
		if err := rows.Scan(&rec.Year, &rec.Families, &rec.Weights.Prestige, &rec.Weights.Efficacy, &rec.Weights.Cost); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run year: %w", err)
		}
		index[rec.Year] = len(years)
		years = append(years, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	schoolRows, err := s.sqlDB.QueryContext(ctx,
		`SELECT year, school_id, endowment, prestige FROM school_years WHERE run_id = ? ORDER BY year, school_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query school years: %w", err)
	}
	defer schoolRows.Close()
	for schoolRows.Next() {
		var (
			year int
			sc   trace.SchoolState
		)
		if err := schoolRows.Scan(&year, &sc.ID, &sc.Endowment, &sc.Prestige); err != nil {
			return nil, fmt.Errorf("scan school year: %w", err)
		}
		if i, ok := index[year]; ok {
			years[i].Schools = append(years[i].Schools, sc)
		}
	}
	return years, schoolRows.Err()
}
