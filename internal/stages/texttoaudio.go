package stages

import (
	"context"
	"path"

	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
)

// TextToAudio synthesizes spoken audio from a text object and stores the
// MP3 in the processed area.
type TextToAudio struct {
	env Env
}

func NewTextToAudio(env Env) *TextToAudio {
	return &TextToAudio{env: env}
}

func (s *TextToAudio) Name() string { return StageTextToAudio }

func (s *TextToAudio) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	body, err := s.env.Store.Get(ctx, st.Bucket, st.InputObjectKey)
	if err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "get object", "could not read source text", err)
	}

	audio, err := s.env.Synthesizer.Synthesize(ctx, string(body), s.env.Config.Speech.VoiceID)
	if err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "synthesize speech", "could not synthesize audio", err)
	}

	destKey := s.env.outputKey(audioFromTextSubPath, replaceExtension(path.Base(st.InputObjectKey), "mp3"))
	if err := s.env.Store.Put(ctx, st.Bucket, destKey, audio); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "put object", "could not store audio", err)
	}
	st.OutputObjectKey = destKey
	logger.Info("synthesized audio stored",
		logging.String("output", destKey),
		logging.String("voice", s.env.Config.Speech.VoiceID),
		logging.Int("bytes", len(audio)))
	return nil
}
