// Package testsupport provides shared helpers for package tests: isolated
// configuration, job-state stores, and seeded object stores.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"ingester/internal/config"
	"ingester/internal/jobstate"
	"ingester/internal/storage"
)

// NewConfig returns a configuration rooted in the test's temp directory,
// with polling intervals collapsed so tests run without waiting.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StoreRoot = filepath.Join(base, "store")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Speech.TranscribePollInterval = 0
	cfg.Speech.TranscribePollMaxInterval = 0
	cfg.Speech.TranscribePollBudget = 5
	cfg.Workflow.InboxPollInterval = 0
	cfg.Workflow.CompletionPollInterval = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// MustOpenJobs opens a job-state store against the test configuration and
// closes it when the test finishes.
func MustOpenJobs(t *testing.T, cfg *config.Config) *jobstate.Store {
	t.Helper()
	store, err := jobstate.Open(cfg)
	if err != nil {
		t.Fatalf("open job-state store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SeedObject writes an object into the store, failing the test on error.
func SeedObject(t *testing.T, store storage.ObjectStore, bucket, key string, body []byte) {
	t.Helper()
	if err := store.Put(context.Background(), bucket, key, body); err != nil {
		t.Fatalf("seed object %s/%s: %v", bucket, key, err)
	}
}
