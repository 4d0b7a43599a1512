package stages

import (
	"context"

	"ingester/internal/classify"
	"ingester/internal/inference"
	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
)

// ModerationScan checks images and videos for unsafe content. Supported
// image formats are scanned synchronously; unsupported ones (gif) pass
// through unscanned. Videos start an asynchronous job and suspend the
// workflow until its completion notification arrives.
type ModerationScan struct {
	env Env
}

func NewModerationScan(env Env) *ModerationScan {
	return &ModerationScan{env: env}
}

func (s *ModerationScan) Name() string { return StageModerationScan }

func (s *ModerationScan) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	switch st.ContentType {
	case state.ContentImage:
		if !classify.Moderatable(st.Extension) {
			logger.Info("format not supported by moderation, skipping",
				logging.String("extension", st.Extension))
			return nil
		}
		labels, err := s.env.Detector.DetectModerationLabels(ctx, st.Bucket, st.InputObjectKey, s.env.Config.Inference.MinModerationConfidence)
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "detect moderation labels", "moderation scan failed", err)
		}
		st.IsUnsafe = len(labels) > 0
		logger.Info("moderation scan complete",
			logging.Int("labels", len(labels)),
			logging.Bool("unsafe", st.IsUnsafe))
		return nil

	case state.ContentVideo:
		jobID, err := s.env.Async.StartContentModeration(ctx, inference.StartJobInput{
			Bucket:        st.Bucket,
			Key:           st.InputObjectKey,
			MinConfidence: s.env.Config.Inference.MinModerationConfidence,
			NotifyTopic:   s.env.Config.Notifications.AsyncCompletedTopic,
			RoleARN:       s.env.Config.Inference.ServiceRole,
		})
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "start content moderation", "could not start moderation job", err)
		}
		if err := s.env.suspend(ctx, st, state.PendingModeration, jobID); err != nil {
			return services.Wrap(services.ErrTransient, s.Name(), "persist continuation", "could not persist workflow state", err)
		}
		logger.Info("moderation job started, workflow suspended", logging.String("job_id", jobID))
		return nil

	default:
		logger.Warn("moderation requested for unsupported content type",
			logging.String("content_type", string(st.ContentType)))
		return nil
	}
}

// ResumeModeration consumes the results of a finished asynchronous
// moderation job. Any reported label marks the record unsafe; pagination
// stops as soon as one is seen.
type ResumeModeration struct {
	env Env
}

func NewResumeModeration(env Env) *ResumeModeration {
	return &ResumeModeration{env: env}
}

func (s *ResumeModeration) Name() string { return StageResumeModeration }

func (s *ResumeModeration) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())
	jobID := st.PendingJobId

	token := ""
	for {
		page, err := s.env.Async.GetContentModeration(ctx, jobID, token)
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "get content moderation", "could not fetch moderation results", err)
		}
		if len(page.Labels) > 0 {
			st.IsUnsafe = true
			break
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	st.ClearPending()
	logger.Info("moderation results consumed",
		logging.String("job_id", jobID),
		logging.Bool("unsafe", st.IsUnsafe))
	return nil
}
