package stages

import (
	"bytes"
	"context"
	"path"

	"github.com/disintegration/imaging"

	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
)

// CreateThumbnail produces a bounded-size rendition of an image. Images
// already within the configured bound are copied as-is; larger ones are
// scaled down preserving aspect ratio. The rendition's key is recorded as
// the workflow's output object.
type CreateThumbnail struct {
	env Env
}

func NewCreateThumbnail(env Env) *CreateThumbnail {
	return &CreateThumbnail{env: env}
}

func (s *CreateThumbnail) Name() string { return StageCreateThumbnail }

func (s *CreateThumbnail) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())
	maxDim := s.env.Config.Outputs.ThumbnailMaxDimension
	thumbKey := s.env.outputKey(thumbsSubPath, path.Base(st.InputObjectKey))

	body, err := s.env.Store.Get(ctx, st.Bucket, st.InputObjectKey)
	if err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "get object", "could not read source image", err)
	}
	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "decode image", "source image is not decodable", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		if err := s.env.Store.Copy(ctx, st.Bucket, st.InputObjectKey, st.Bucket, thumbKey); err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "copy object", "could not copy image", err)
		}
		st.OutputObjectKey = thumbKey
		logger.Info("image within bounds, copied unscaled",
			logging.Int("width", bounds.Dx()),
			logging.Int("height", bounds.Dy()),
			logging.String("output", thumbKey))
		return nil
	}

	thumb := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "encode thumbnail", "could not encode thumbnail", err)
	}
	if err := s.env.Store.Put(ctx, st.Bucket, thumbKey, buf.Bytes()); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "put object", "could not store thumbnail", err)
	}
	st.OutputObjectKey = thumbKey
	logger.Info("thumbnail created",
		logging.Int("width", thumb.Bounds().Dx()),
		logging.Int("height", thumb.Bounds().Dy()),
		logging.String("output", thumbKey))
	return nil
}
