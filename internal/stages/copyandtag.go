package stages

import (
	"context"
	"path"
	"strings"

	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
	"ingester/internal/storage"
)

// CopyAndTag copies the original image or video into the processed area and
// attaches the discovered keywords and celebrities as object tags.
type CopyAndTag struct {
	env Env
}

func NewCopyAndTag(env Env) *CopyAndTag {
	return &CopyAndTag{env: env}
}

func (s *CopyAndTag) Name() string { return StageCopyAndTag }

func (s *CopyAndTag) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	var subPath string
	switch st.ContentType {
	case state.ContentImage:
		subPath = imagesSubPath
	case state.ContentVideo:
		subPath = videosSubPath
	default:
		logger.Info("nothing to copy for content type",
			logging.String("content_type", string(st.ContentType)))
		return nil
	}

	destKey := s.env.outputKey(subPath, path.Base(st.InputObjectKey))
	tags := []storage.Tag{
		{Key: "Keywords", Value: strings.Join(st.Keywords, "/")},
		{Key: "Celebrities", Value: strings.Join(st.Celebrities, "/")},
	}
	if err := s.env.Store.Copy(ctx, st.Bucket, st.InputObjectKey, st.Bucket, destKey, tags...); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "copy object", "could not copy media to outputs", err)
	}
	if st.OutputObjectKey == "" {
		st.OutputObjectKey = destKey
	}
	logger.Info("media copied and tagged",
		logging.String("output", destKey),
		logging.Int("keywords", len(st.Keywords)),
		logging.Int("celebrities", len(st.Celebrities)))
	return nil
}
