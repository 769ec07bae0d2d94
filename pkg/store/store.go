// Package store keeps a SQLite ledger of pipeline runs and the
// cross-validation scores they produced.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound reports an unknown run id.
var ErrRunNotFound = errors.New("run not found")

var errNotOpen = errors.New("database not opened")

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one execution of a pipeline stage.
type Run struct {
	ID          string
	Stage       string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// ScoreRow is the cross-validated score of one grid point.
type ScoreRow struct {
	K    int
	Mean float64
	Std  float64
	SEM  float64
	Best bool
}

// Store is a run ledger backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the ledger at path and migrates it.
// Use ":memory:" for an in-memory ledger.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// an in-memory database lives on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened run ledger", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records a new running run of stage.
func (s *Store) StartRun(stage string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	run := &Run{
		ID:        uuid.New().String(),
		Stage:     stage,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.logger.Debug("starting run", slog.String("id", run.ID), slog.String("stage", stage))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Stage, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed, or failed with runErr's message.
func (s *Store) FinishRun(id string, runErr error) error {
	if s.db == nil {
		return errNotOpen
	}
	status := RunStatusCompleted
	var errMsg *string
	if runErr != nil {
		status = RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), formatTime(time.Now().UTC()), errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	row := s.db.QueryRow(
		`SELECT id, stage, status, started_at, completed_at, error FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	rows, err := s.db.Query(
		`SELECT id, stage, status, started_at, completed_at, error FROM runs
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordScores stores the grid search scores of a run in one transaction.
func (s *Store) RecordScores(runID string, scores []ScoreRow) error {
	if s.db == nil {
		return errNotOpen
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(
		`INSERT INTO cv_scores (run_id, n_neighbors, mean_score, std_score, sem_score, best)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare score insert: %w", err)
	}
	defer stmt.Close()

	for _, sc := range scores {
		if _, err := stmt.Exec(runID, sc.K, sc.Mean, sc.Std, sc.SEM, sc.Best); err != nil {
			return fmt.Errorf("failed to record score for k = %d: %w", sc.K, err)
		}
	}
	return tx.Commit()
}

// Scores returns the scores recorded for a run, by k.
func (s *Store) Scores(runID string) ([]ScoreRow, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	rows, err := s.db.Query(
		`SELECT n_neighbors, mean_score, std_score, sem_score, best FROM cv_scores
		 WHERE run_id = ? ORDER BY n_neighbors`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var sc ScoreRow
		if err := rows.Scan(&sc.K, &sc.Mean, &sc.Std, &sc.SEM, &sc.Best); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run                 Run
		status, started     string
		completed, errorMsg sql.NullString
	)
	if err := sc.Scan(&run.ID, &run.Stage, &status, &started, &completed, &errorMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("started_at: %w", err)
	}
	run.StartedAt = t
	if completed.Valid {
		t, err := time.Parse(timeLayout, completed.String)
		if err != nil {
			return nil, fmt.Errorf("completed_at: %w", err)
		}
		run.CompletedAt = &t
	}
	run.Error = errorMsg.String
	return &run, nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }
