package jobstate

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pending_jobs (
        job_id TEXT PRIMARY KEY,
        workflow_state TEXT NOT NULL,
        created_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS executions (
        name TEXT PRIMARY KEY,
        bucket TEXT NOT NULL,
        input_object_key TEXT NOT NULL,
        status TEXT NOT NULL,
        detail TEXT,
        started_at TEXT NOT NULL,
        finished_at TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS idx_executions_started_at ON executions (started_at)`,
}

func (s *Store) applySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
