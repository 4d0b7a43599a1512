package stages

import (
	"context"

	"ingester/internal/inference"
	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
)

// CelebrityScan recognizes celebrities in media whose keywords indicate a
// person is present; everything else skips the scan. Images are scanned
// synchronously, videos asynchronously.
type CelebrityScan struct {
	env Env
}

func NewCelebrityScan(env Env) *CelebrityScan {
	return &CelebrityScan{env: env}
}

func (s *CelebrityScan) Name() string { return StageCelebrityScan }

func (s *CelebrityScan) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	if !st.HasPersonIndicator() {
		logger.Info("no person keyword, skipping celebrity recognition")
		return nil
	}

	switch st.ContentType {
	case state.ContentImage:
		celebrities, err := s.env.Detector.RecognizeCelebrities(ctx, st.Bucket, st.InputObjectKey)
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "recognize celebrities", "celebrity scan failed", err)
		}
		for _, celebrity := range celebrities {
			st.AddCelebrity(celebrity.Name)
		}
		logger.Info("celebrity scan complete", logging.Int("celebrities", len(st.Celebrities)))
		return nil

	case state.ContentVideo:
		jobID, err := s.env.Async.StartCelebrityRecognition(ctx, inference.StartJobInput{
			Bucket:      st.Bucket,
			Key:         st.InputObjectKey,
			NotifyTopic: s.env.Config.Notifications.AsyncCompletedTopic,
			RoleARN:     s.env.Config.Inference.ServiceRole,
		})
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "start celebrity recognition", "could not start celebrity job", err)
		}
		if err := s.env.suspend(ctx, st, state.PendingCelebrityDetection, jobID); err != nil {
			return services.Wrap(services.ErrTransient, s.Name(), "persist continuation", "could not persist workflow state", err)
		}
		logger.Info("celebrity job started, workflow suspended", logging.String("job_id", jobID))
		return nil

	default:
		logger.Warn("celebrity scan requested for unsupported content type",
			logging.String("content_type", string(st.ContentType)))
		return nil
	}
}

// ResumeCelebrities consumes the results of a finished asynchronous
// celebrity recognition job.
type ResumeCelebrities struct {
	env Env
}

func NewResumeCelebrities(env Env) *ResumeCelebrities {
	return &ResumeCelebrities{env: env}
}

func (s *ResumeCelebrities) Name() string { return StageResumeCelebrities }

func (s *ResumeCelebrities) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())
	jobID := st.PendingJobId

	token := ""
	for {
		page, err := s.env.Async.GetCelebrityRecognition(ctx, jobID, token)
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "get celebrity recognition", "could not fetch celebrity results", err)
		}
		for _, celebrity := range page.Celebrities {
			st.AddCelebrity(celebrity.Name)
		}
		if page.NextToken == "" || len(st.Celebrities) >= state.MaxKeywordsOrCelebrities {
			break
		}
		token = page.NextToken
	}

	st.ClearPending()
	logger.Info("celebrity results consumed",
		logging.String("job_id", jobID),
		logging.Int("celebrities", len(st.Celebrities)))
	return nil
}
