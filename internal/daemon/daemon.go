package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"ingester/internal/config"
	"ingester/internal/logging"
	"ingester/internal/notifications"
	"ingester/internal/storage"
	"ingester/internal/workflow"
)

// Daemon runs the two pollers that drive the pipeline: the inbox watcher
// that starts workflows for new objects and the completion poller that
// resumes suspended ones. A file lock enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	store    storage.ObjectStore
	trigger  *workflow.Trigger
	receiver notifications.Receiver
	logger   *slog.Logger
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu   sync.Mutex
	seen map[string]struct{}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store storage.ObjectStore, trigger *workflow.Trigger, receiver notifications.Receiver, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || trigger == nil {
		return nil, errors.New("daemon requires config, object store, and trigger")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:      cfg,
		store:    store,
		trigger:  trigger,
		receiver: receiver,
		logger:   logging.WithComponent(logger, "daemon"),
		lock:     flock.New(filepath.Join(cfg.Paths.DataDir, "ingesterd.lock")),
		seen:     make(map[string]struct{}),
	}, nil
}

// Start acquires the instance lock and launches the pollers. It returns
// immediately; use Stop or cancel the context to shut down.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another ingester daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(2)
	go d.loop(runCtx, "inbox", d.cfg.Workflow.InboxPollInterval, d.ScanInbox)
	go d.loop(runCtx, "completions", d.cfg.Workflow.CompletionPollInterval, d.PollCompletions)

	d.logger.Info("daemon started",
		logging.String("bucket", d.cfg.Ingest.Bucket),
		logging.String("input_root", d.cfg.Ingest.InputRootPath))
	return nil
}

// Stop cancels the pollers, waits for them, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.cancel()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("could not release lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Running reports whether the pollers are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lock.Path()
}

func (d *Daemon) loop(ctx context.Context, name string, intervalSeconds int, pass func(context.Context) error) {
	defer d.wg.Done()
	interval := time.Duration(intervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	retry := time.Duration(d.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = interval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := pass(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("poll pass failed", logging.String("poller", name), logging.Error(err))
			ticker.Reset(retry)
		} else {
			ticker.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ScanInbox lists the inbox prefix and starts a workflow for every object
// not seen before. Keys that disappear from the listing (consumed by a
// finished workflow) are forgotten so a later re-upload is processed again.
func (d *Daemon) ScanInbox(ctx context.Context) error {
	prefix := d.cfg.Ingest.InputRootPath
	if prefix != "" {
		prefix += "/"
	}
	keys, err := d.store.List(ctx, d.cfg.Ingest.Bucket, prefix)
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}

	current := make(map[string]struct{}, len(keys))
	var fresh []string
	d.mu.Lock()
	for _, key := range keys {
		current[key] = struct{}{}
		if _, ok := d.seen[key]; !ok {
			d.seen[key] = struct{}{}
			fresh = append(fresh, key)
		}
	}
	for key := range d.seen {
		if _, ok := current[key]; !ok {
			delete(d.seen, key)
		}
	}
	d.mu.Unlock()

	for _, key := range fresh {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.trigger.HandleNewObject(ctx, d.cfg.Ingest.Bucket, key); err != nil {
			d.logger.Error("workflow failed", logging.String("key", key), logging.Error(err))
		}
	}
	return nil
}

// PollCompletions fetches pending completion payloads and feeds them to the
// trigger.
func (d *Daemon) PollCompletions(ctx context.Context) error {
	if d.receiver == nil {
		return nil
	}
	payloads, err := d.receiver.Receive(ctx)
	if err != nil {
		return fmt.Errorf("poll completions: %w", err)
	}
	for _, payload := range payloads {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.trigger.HandleCompletion(ctx, payload); err != nil {
			d.logger.Error("completion handling failed", logging.Error(err))
		}
	}
	return nil
}
