package stages

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/speech"
	"ingester/internal/state"
)

// AudioToText transcribes an audio object and stores the transcript as a
// text file in the processed area. Transcription is a start-then-poll
// operation; polling backs off exponentially up to a configured ceiling and
// gives up after the configured budget.
type AudioToText struct {
	env Env

	// now is swappable for tests.
	now func() time.Time
}

func NewAudioToText(env Env) *AudioToText {
	return &AudioToText{env: env, now: time.Now}
}

func (s *AudioToText) Name() string { return StageAudioToText }

func (s *AudioToText) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	region, err := s.env.Store.Locate(ctx, st.Bucket)
	if err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "locate bucket", "could not resolve bucket region", err)
	}

	jobName := transcriptionJobName(st.Bucket, st.InputObjectKey, s.now())
	in := speech.StartTranscriptionInput{
		JobName:     jobName,
		MediaURI:    fmt.Sprintf("s3://%s/%s", st.Bucket, st.InputObjectKey),
		MediaFormat: st.Extension,
	}
	if err := s.env.Transcriber.StartTranscription(ctx, in); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "start transcription", "could not start transcription job", err)
	}
	logger.Info("transcription started",
		logging.String("job_name", jobName),
		logging.String("region", region))

	job, err := s.awaitTranscription(ctx, jobName)
	if err != nil {
		return err
	}
	if job.Status == speech.TranscriptionFailed {
		logger.Warn("transcription failed, leaving input in place",
			logging.String("job_name", jobName),
			logging.String("reason", job.FailureReason))
		return nil
	}

	doc, err := s.env.Transcriber.FetchTranscript(ctx, job.TranscriptURI)
	if err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "fetch transcript", "could not fetch transcript", err)
	}
	text, err := speech.ExtractTranscriptText(doc)
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "extract transcript", "transcript document is malformed", err)
	}

	destKey := s.env.outputKey(textFromAudioSubPath, replaceExtension(path.Base(st.InputObjectKey), "txt"))
	if err := s.env.Store.Put(ctx, st.Bucket, destKey, []byte(text)); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "put object", "could not store transcript", err)
	}
	st.OutputObjectKey = destKey
	logger.Info("transcript stored",
		logging.String("output", destKey),
		logging.Int("characters", len(text)))
	return nil
}

func (s *AudioToText) awaitTranscription(ctx context.Context, jobName string) (*speech.TranscriptionJob, error) {
	cfg := s.env.Config.Speech
	interval := time.Duration(cfg.TranscribePollInterval) * time.Second
	maxInterval := time.Duration(cfg.TranscribePollMaxInterval) * time.Second
	deadline := s.now().Add(time.Duration(cfg.TranscribePollBudget) * time.Second)

	for {
		job, err := s.env.Transcriber.GetTranscription(ctx, jobName)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalService, s.Name(), "get transcription", "could not poll transcription job", err)
		}
		if job.Status != speech.TranscriptionInProgress {
			return job, nil
		}
		if s.now().After(deadline) {
			return nil, services.Wrap(services.ErrTimeout, s.Name(), "await transcription",
				fmt.Sprintf("transcription %s did not finish within budget", jobName), nil)
		}
		select {
		case <-ctx.Done():
			return nil, services.Wrap(services.ErrTimeout, s.Name(), "await transcription", "wait canceled", ctx.Err())
		case <-time.After(interval):
		}
		if interval *= 2; interval > maxInterval {
			interval = maxInterval
		}
	}
}

// transcriptionJobName derives a unique job name from the object identity
// and the start time.
func transcriptionJobName(bucket, key string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d", bucket, strings.ReplaceAll(key, "/", "_"), at.UTC().UnixNano())
}

// replaceExtension swaps a filename's extension, appending when it has none.
func replaceExtension(filename, ext string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + "." + ext
}
