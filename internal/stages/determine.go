package stages

import (
	"context"

	"ingester/internal/classify"
	"ingester/internal/logging"
	"ingester/internal/state"
)

// DetermineMediaType classifies the input object by extension and records
// the content type on the state record. Every workflow starts here.
type DetermineMediaType struct {
	env Env
}

func NewDetermineMediaType(env Env) *DetermineMediaType {
	return &DetermineMediaType{env: env}
}

func (s *DetermineMediaType) Name() string { return StageDetermineMediaType }

func (s *DetermineMediaType) Execute(ctx context.Context, st *state.State) error {
	contentType, ext := classify.Classify(st.InputObjectKey)
	st.ContentType = contentType
	st.Extension = ext

	logger := s.env.log(ctx, s.Name())
	if contentType == state.ContentUnknown {
		logger.Warn("unrecognized media type",
			logging.String("extension", ext),
			logging.String("object", st.Describe()))
		return nil
	}
	logger.Info("classified media",
		logging.String("content_type", string(contentType)),
		logging.String("extension", ext))
	return nil
}
