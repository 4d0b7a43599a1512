package jobstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ingester/internal/config"
	"ingester/internal/state"
)

// Store persists workflow continuations for in-flight async jobs, keyed by
// the external job id. An entry is created when an async stage suspends and
// read-and-deleted when the job's completion notification is processed; it
// is the only place a paused workflow's progress lives.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job-state database and applies the
// schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "jobstate.db")
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
	if err := store.applySchema(context.Background()); err != nil {
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

// Put stores a full state snapshot under the async job id, replacing any
// previous snapshot for that id.
func (s *Store) Put(ctx context.Context, jobID string, st *state.State) error {
	if jobID == "" {
		return errors.New("jobstate: job id is empty")
	}
	if st == nil {
		return errors.New("jobstate: state is nil")
	}
	encoded, err := st.Encode()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO pending_jobs (job_id, workflow_state, created_at)
         VALUES (?, ?, ?)
         ON CONFLICT(job_id) DO UPDATE SET workflow_state = excluded.workflow_state`,
		jobID,
		string(encoded),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("persist job state: %w", err)
	}
	return nil
}

// Get returns the snapshot stored for a job id, or nil when no entry exists
// (already consumed or never written). A missing entry is not an error so
// duplicate notification delivery stays a no-op for callers.
func (s *Store) Get(ctx context.Context, jobID string) (*state.State, error) {
	row := s.db.QueryRowContext(ctx, `SELECT workflow_state FROM pending_jobs WHERE job_id = ?`, jobID)
	var encoded string
	err := row.Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job state: %w", err)
	}
	st, err := state.Decode([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}
	return st, nil
}

// Delete removes a job's snapshot. Deleting an id that was already removed
// is a no-op.
func (s *Store) Delete(ctx context.Context, jobID string) error {
	if jobID == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_jobs WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("delete job state: %w", err)
	}
	return nil
}

// PendingJob describes one stored continuation for operator tooling.
type PendingJob struct {
	JobID     string
	State     *state.State
	CreatedAt time.Time
}

// ListPending returns all stored continuations ordered by creation time.
func (s *Store) ListPending(ctx context.Context) ([]PendingJob, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id, workflow_state, created_at FROM pending_jobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []PendingJob
	for rows.Next() {
		var job PendingJob
		var encoded, createdAt string
		if err := rows.Scan(&job.JobID, &encoded, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending job: %w", err)
		}
		if job.State, err = state.Decode([]byte(encoded)); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.JobID, err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			job.CreatedAt = ts
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
