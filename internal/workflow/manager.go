package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ingester/internal/jobstate"
	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/stages"
	"ingester/internal/state"
)

// Manager drives one workflow execution at a time: it asks the router for
// the next stage, executes it, and stops when the record suspends or the
// route ends. Each run is journaled in the job-state database.
type Manager struct {
	handlers map[string]stages.Handler
	jobs     *jobstate.Store
	logger   *slog.Logger
}

// NewManager builds a manager with the given stage handlers registered.
func NewManager(jobs *jobstate.Store, logger *slog.Logger, handlers ...stages.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		handlers: make(map[string]stages.Handler, len(handlers)),
		jobs:     jobs,
		logger:   logging.WithComponent(logger, "workflow"),
	}
	for _, h := range handlers {
		m.handlers[h.Name()] = h
	}
	return m
}

// Register adds or replaces a stage handler.
func (m *Manager) Register(h stages.Handler) {
	m.handlers[h.Name()] = h
}

// Run executes the workflow for the record until it completes or suspends.
// A record that arrives suspended (loaded from the job-state store) resumes
// at the matching resume stage.
func (m *Manager) Run(ctx context.Context, st *state.State, executionName string) error {
	ctx = services.WithExecution(ctx, executionName)
	ctx = services.WithObject(ctx, st.Describe())
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)

	if err := m.jobs.RecordExecutionStart(ctx, executionName, st.Bucket, st.InputObjectKey); err != nil {
		logger.Warn("could not journal execution start", logging.Error(err))
	}
	started := time.Now()
	logger.Info("execution started", logging.Bool("resumed", st.Suspended()))

	prev := ""
	for {
		stageName, ok := Next(prev, st)
		if !ok {
			break
		}
		handler, registered := m.handlers[stageName]
		if !registered {
			err := services.Wrap(services.ErrConfiguration, stageName, "route", "no handler registered", nil)
			m.finish(ctx, logger, executionName, jobstate.ExecutionFailed, err.Error())
			return err
		}

		stageCtx := services.WithStage(ctx, stageName)
		stageLogger := logging.WithContext(stageCtx, m.logger)
		stageLogger.Info("stage started")
		stageStarted := time.Now()

		if err := handler.Execute(stageCtx, st); err != nil {
			stageLogger.Error("stage failed",
				logging.Error(err),
				logging.Duration("duration", time.Since(stageStarted)))
			m.finish(ctx, logger, executionName, jobstate.ExecutionFailed, fmt.Sprintf("%s: %v", stageName, err))
			return err
		}
		stageLogger.Info("stage complete", logging.Duration("duration", time.Since(stageStarted)))

		if st.Suspended() {
			logger.Info("execution suspended",
				logging.String("stage", stageName),
				logging.String("job_id", st.PendingJobId),
				logging.Duration("duration", time.Since(started)))
			m.finish(ctx, logger, executionName, jobstate.ExecutionSuspended, stageName)
			return nil
		}
		prev = stageName
	}

	logger.Info("execution complete", logging.Duration("duration", time.Since(started)))
	m.finish(ctx, logger, executionName, jobstate.ExecutionCompleted, "")
	return nil
}

func (m *Manager) finish(ctx context.Context, logger *slog.Logger, name, status, detail string) {
	if err := m.jobs.RecordExecutionFinish(ctx, name, status, detail); err != nil {
		logger.Warn("could not journal execution finish", logging.Error(err))
	}
}
