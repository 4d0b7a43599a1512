package jobstate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Execution statuses recorded in the journal.
const (
	ExecutionRunning   = "running"
	ExecutionSuspended = "suspended"
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
)

// Execution is one journal row describing a workflow run.
type Execution struct {
	Name           string
	Bucket         string
	InputObjectKey string
	Status         string
	Detail         string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// RecordExecutionStart journals the beginning of a workflow execution.
func (s *Store) RecordExecutionStart(ctx context.Context, name, bucket, inputObjectKey string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO executions (name, bucket, input_object_key, status, started_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET status = excluded.status`,
		name,
		bucket,
		inputObjectKey,
		ExecutionRunning,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record execution start: %w", err)
	}
	return nil
}

// RecordExecutionFinish updates a journal row with the terminal (or
// suspended) status of the run. Detail carries the failure message or the
// stage the run suspended at.
func (s *Store) RecordExecutionFinish(ctx context.Context, name, status, detail string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE executions SET status = ?, detail = ?, finished_at = ? WHERE name = ?`,
		status,
		detail,
		time.Now().UTC().Format(time.RFC3339Nano),
		name,
	)
	if err != nil {
		return fmt.Errorf("record execution finish: %w", err)
	}
	return nil
}

// ListExecutions returns the most recent journal rows, newest first. A limit
// of zero or less returns everything.
func (s *Store) ListExecutions(ctx context.Context, limit int) ([]Execution, error) {
	query := `SELECT name, bucket, input_object_key, status, COALESCE(detail, ''), started_at, COALESCE(finished_at, '')
              FROM executions ORDER BY started_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		var exec Execution
		var startedAt, finishedAt string
		if err := rows.Scan(&exec.Name, &exec.Bucket, &exec.InputObjectKey, &exec.Status, &exec.Detail, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			exec.StartedAt = ts
		}
		if finishedAt != "" {
			if ts, parseErr := time.Parse(time.RFC3339Nano, finishedAt); parseErr == nil {
				exec.FinishedAt = ts
			}
		}
		executions = append(executions, exec)
	}
	return executions, rows.Err()
}
