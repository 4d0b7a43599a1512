package workflow

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"ingester/internal/inference"
	"ingester/internal/jobstate"
	"ingester/internal/logging"
	"ingester/internal/notifications"
	"ingester/internal/services"
	"ingester/internal/state"
)

// folderMarker is the pseudo-object some tools create to represent empty
// directories; it never enters the workflow.
const folderMarker = "$folder$"

// Trigger starts workflow executions from the two external events: a new
// object arriving in the inbox and an async scan job completing.
type Trigger struct {
	manager *Manager
	jobs    *jobstate.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewTrigger wires a trigger to the manager and job-state store.
func NewTrigger(manager *Manager, jobs *jobstate.Store, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Trigger{
		manager: manager,
		jobs:    jobs,
		logger:  logging.WithComponent(logger, "trigger"),
		now:     time.Now,
	}
}

// HandleNewObject starts a fresh execution for an inbox object. Folder
// markers and directory-like keys are ignored.
func (t *Trigger) HandleNewObject(ctx context.Context, bucket, key string) error {
	if strings.HasSuffix(key, "/") || strings.Contains(path.Base(key), folderMarker) {
		t.logger.Debug("ignoring folder marker", logging.String("key", key))
		return nil
	}
	st := state.New(bucket, key)
	name := DeriveExecutionName(key, t.now())
	return t.manager.Run(ctx, st, name)
}

// HandleCompletion processes an async-scan completion payload. The stored
// continuation is consumed exactly once: a payload for an already-consumed
// job id is a duplicate delivery and a no-op. Failed jobs abandon the
// workflow, leaving the input object in place for manual review. Malformed
// payloads leave the store untouched so a later well-formed delivery can
// still resume the workflow.
func (t *Trigger) HandleCompletion(ctx context.Context, payload []byte) error {
	msg, err := notifications.ParseCompletion(payload)
	if err != nil {
		t.logger.Error("unparseable completion payload", logging.Error(err))
		return services.Wrap(services.ErrValidation, "completion", "parse", "bad completion payload", err)
	}

	ctx = services.WithObject(ctx, msg.JobID)
	logger := t.logger.With(
		logging.String("job_id", msg.JobID),
		logging.String("status", msg.Status))

	st, err := t.jobs.Get(ctx, msg.JobID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "completion", "load continuation", "could not load workflow state", err)
	}
	if st == nil {
		logger.Info("no stored continuation, ignoring duplicate completion")
		return nil
	}
	if err := t.jobs.Delete(ctx, msg.JobID); err != nil {
		return services.Wrap(services.ErrTransient, "completion", "consume continuation", "could not delete workflow state", err)
	}

	if msg.Status != inference.StatusSucceeded {
		logger.Warn("async job did not succeed, abandoning workflow",
			logging.String("object", st.Describe()))
		name := DeriveExecutionName(st.InputObjectKey, t.now())
		if jerr := t.jobs.RecordExecutionStart(ctx, name, st.Bucket, st.InputObjectKey); jerr == nil {
			_ = t.jobs.RecordExecutionFinish(ctx, name, jobstate.ExecutionFailed, "async job "+msg.Status)
		}
		return nil
	}

	name := DeriveExecutionName(st.InputObjectKey, t.now())
	return t.manager.Run(ctx, st, name)
}
