package stages

import (
	"context"
	"log/slog"
	"path"

	"ingester/internal/config"
	"ingester/internal/inference"
	"ingester/internal/jobstate"
	"ingester/internal/logging"
	"ingester/internal/notifications"
	"ingester/internal/speech"
	"ingester/internal/state"
	"ingester/internal/storage"
)

// Stage names as they appear in routing, logs, and the execution journal.
const (
	StageDetermineMediaType = "DetermineMediaType"
	StageModerationScan     = "ModerationScan"
	StageKeywordScan        = "KeywordScan"
	StageCelebrityScan      = "CelebrityScan"
	StageResumeModeration   = "ResumeModeration"
	StageResumeKeywords     = "ResumeKeywords"
	StageResumeCelebrities  = "ResumeCelebrities"
	StageCreateThumbnail    = "CreateThumbnail"
	StageAudioToText        = "AudioToText"
	StageTextToAudio        = "TextToAudio"
	StageCopyAndTag         = "CopyAndTag"
	StageRemoveInput        = "RemoveInput"
	StageNotifyComplete     = "NotifyComplete"
)

// Handler executes one workflow stage against a state record. Handlers
// mutate the record in place; a stage that starts an async job marks the
// record pending and persists it, which ends the current execution.
type Handler interface {
	Name() string
	Execute(ctx context.Context, st *state.State) error
}

// Env bundles the dependencies shared by the stage handlers.
type Env struct {
	Config      *config.Config
	Store       storage.ObjectStore
	Jobs        *jobstate.Store
	Detector    inference.Detector
	Async       inference.AsyncDetector
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Publisher   notifications.Publisher
	Logger      *slog.Logger
}

func (e Env) log(ctx context.Context, stage string) *slog.Logger {
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return logging.WithContext(ctx, logging.WithComponent(logger, stage))
}

// suspend marks the record pending on an async job and persists the full
// snapshot under the job id. After this returns the execution must stop; the
// job's completion notification starts the successor execution.
func (e Env) suspend(ctx context.Context, st *state.State, scan state.PendingScan, jobID string) error {
	st.SetPending(scan, jobID)
	if err := e.Jobs.Put(ctx, jobID, st); err != nil {
		st.ClearPending()
		return err
	}
	return nil
}

// outputKey builds a destination key under the configured outputs root.
func (e Env) outputKey(subPath, filename string) string {
	return path.Join(e.Config.Ingest.OutputsRootPath, subPath, filename)
}

// Output sub-paths below the outputs root.
const (
	imagesSubPath        = "images"
	thumbsSubPath        = "images/thumbs"
	videosSubPath        = "videos"
	audioFromTextSubPath = "audio-from-text"
	textFromAudioSubPath = "text-from-audio"
)
