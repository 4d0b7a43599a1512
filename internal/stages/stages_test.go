package stages_test

import (
	"testing"

	"ingester/internal/config"
	"ingester/internal/inference"
	"ingester/internal/jobstate"
	"ingester/internal/logging"
	"ingester/internal/notifications"
	"ingester/internal/speech"
	"ingester/internal/stages"
	"ingester/internal/storage"
	"ingester/internal/testsupport"
)

type fixture struct {
	cfg       *config.Config
	store     *storage.MemoryStore
	jobs      *jobstate.Store
	detector  *inference.Stub
	speech    *speech.Stub
	publisher *notifications.Capture
	env       stages.Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	f := &fixture{
		cfg:       cfg,
		store:     storage.NewMemoryStore(),
		jobs:      testsupport.MustOpenJobs(t, cfg),
		detector:  inference.NewStub(),
		speech:    speech.NewStub("stub transcript"),
		publisher: notifications.NewCapture(),
	}
	f.env = stages.Env{
		Config:      cfg,
		Store:       f.store,
		Jobs:        f.jobs,
		Detector:    f.detector,
		Async:       f.detector,
		Transcriber: f.speech,
		Synthesizer: f.speech,
		Publisher:   f.publisher,
		Logger:      logging.NewNop(),
	}
	return f
}
