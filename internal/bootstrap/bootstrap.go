// Package bootstrap wires configuration to concrete backends and builds the
// workflow runtime shared by the daemon and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ingester/internal/config"
	"ingester/internal/inference"
	"ingester/internal/jobstate"
	"ingester/internal/notifications"
	"ingester/internal/speech"
	"ingester/internal/stages"
	"ingester/internal/storage"
	"ingester/internal/workflow"
)

// Runtime bundles the wired pipeline components.
type Runtime struct {
	Config   *config.Config
	Store    storage.ObjectStore
	Jobs     *jobstate.Store
	Manager  *workflow.Manager
	Trigger  *workflow.Trigger
	Receiver notifications.Receiver
}

// Build constructs the runtime from configuration. Subsystems with an
// endpoint configured get HTTP backends; the rest fall back to in-process
// stubs so the pipeline stays operable on a single machine.
func Build(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	store, err := storage.NewFilesystemStore(cfg.Paths.StoreRoot, "local")
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	jobs, err := jobstate.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job-state store: %w", err)
	}

	var (
		detector inference.Detector
		async    inference.AsyncDetector
		receiver notifications.Receiver
	)
	if cfg.Inference.Endpoint != "" {
		client := inference.NewHTTPClient(cfg.Inference.Endpoint, time.Duration(cfg.Inference.RequestTimeout)*time.Second, nil)
		detector, async = client, client
	} else {
		stub := inference.NewStub()
		detector, async = stub, stub
		receiver = notifications.ReceiverFunc(func(ctx context.Context) ([][]byte, error) {
			var payloads [][]byte
			for _, c := range stub.DrainCompletions() {
				payload, err := notifications.CompletionMessage{JobID: c.JobID, Status: c.Status}.Encode()
				if err != nil {
					return nil, err
				}
				payloads = append(payloads, payload)
			}
			return payloads, nil
		})
	}

	var (
		transcriber speech.Transcriber
		synthesizer speech.Synthesizer
	)
	if cfg.Speech.Endpoint != "" {
		client := speech.NewHTTPClient(cfg.Speech.Endpoint, time.Duration(cfg.Speech.RequestTimeout)*time.Second, nil)
		transcriber, synthesizer = client, client
	} else {
		stub := speech.NewStub("")
		transcriber, synthesizer = stub, stub
	}

	var publisher notifications.Publisher
	if cfg.Notifications.Endpoint != "" {
		publisher = notifications.NewHTTPPublisher(cfg.Notifications.Endpoint, time.Duration(cfg.Notifications.RequestTimeout)*time.Second, nil)
		if receiver == nil {
			receiver = notifications.NewHTTPReceiver(cfg.Notifications.Endpoint, cfg.Notifications.AsyncCompletedTopic, time.Duration(cfg.Notifications.RequestTimeout)*time.Second, nil)
		}
	} else {
		publisher = notifications.NewNoop()
	}

	env := stages.Env{
		Config:      cfg,
		Store:       store,
		Jobs:        jobs,
		Detector:    detector,
		Async:       async,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Publisher:   publisher,
		Logger:      logger,
	}
	manager := workflow.NewManager(jobs, logger,
		stages.NewDetermineMediaType(env),
		stages.NewModerationScan(env),
		stages.NewKeywordScan(env),
		stages.NewCelebrityScan(env),
		stages.NewResumeModeration(env),
		stages.NewResumeKeywords(env),
		stages.NewResumeCelebrities(env),
		stages.NewCreateThumbnail(env),
		stages.NewAudioToText(env),
		stages.NewTextToAudio(env),
		stages.NewCopyAndTag(env),
		stages.NewRemoveInput(env),
		stages.NewNotifyComplete(env),
	)

	return &Runtime{
		Config:   cfg,
		Store:    store,
		Jobs:     jobs,
		Manager:  manager,
		Trigger:  workflow.NewTrigger(manager, jobs, logger),
		Receiver: receiver,
	}, nil
}

// Close releases the runtime's resources.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.Jobs.Close()
}
