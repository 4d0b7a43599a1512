package stages

import (
	"context"

	"ingester/internal/inference"
	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
)

// KeywordScan extracts descriptive labels from the media and records them as
// keywords. Images are scanned synchronously; videos start an asynchronous
// job and suspend the workflow.
type KeywordScan struct {
	env Env
}

func NewKeywordScan(env Env) *KeywordScan {
	return &KeywordScan{env: env}
}

func (s *KeywordScan) Name() string { return StageKeywordScan }

func (s *KeywordScan) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	switch st.ContentType {
	case state.ContentImage:
		labels, err := s.env.Detector.DetectLabels(ctx, st.Bucket, st.InputObjectKey, s.env.Config.Inference.MinKeywordConfidence)
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "detect labels", "keyword scan failed", err)
		}
		for _, label := range labels {
			st.AddKeyword(label.Name)
		}
		logger.Info("keyword scan complete", logging.Int("keywords", len(st.Keywords)))
		return nil

	case state.ContentVideo:
		jobID, err := s.env.Async.StartLabelDetection(ctx, inference.StartJobInput{
			Bucket:        st.Bucket,
			Key:           st.InputObjectKey,
			MinConfidence: s.env.Config.Inference.MinKeywordConfidence,
			NotifyTopic:   s.env.Config.Notifications.AsyncCompletedTopic,
			RoleARN:       s.env.Config.Inference.ServiceRole,
		})
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "start label detection", "could not start keyword job", err)
		}
		if err := s.env.suspend(ctx, st, state.PendingKeywording, jobID); err != nil {
			return services.Wrap(services.ErrTransient, s.Name(), "persist continuation", "could not persist workflow state", err)
		}
		logger.Info("keyword job started, workflow suspended", logging.String("job_id", jobID))
		return nil

	default:
		logger.Warn("keyword scan requested for unsupported content type",
			logging.String("content_type", string(st.ContentType)))
		return nil
	}
}

// ResumeKeywords consumes the results of a finished asynchronous label
// detection job. The record's keyword list dedupes case-insensitively and
// caps itself, so pagination stops once the list is full.
type ResumeKeywords struct {
	env Env
}

func NewResumeKeywords(env Env) *ResumeKeywords {
	return &ResumeKeywords{env: env}
}

func (s *ResumeKeywords) Name() string { return StageResumeKeywords }

func (s *ResumeKeywords) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())
	jobID := st.PendingJobId

	token := ""
	for {
		page, err := s.env.Async.GetLabelDetection(ctx, jobID, token)
		if err != nil {
			return services.Wrap(services.ErrExternalService, s.Name(), "get label detection", "could not fetch keyword results", err)
		}
		for _, label := range page.Labels {
			st.AddKeyword(label.Name)
		}
		if page.NextToken == "" || len(st.Keywords) >= state.MaxKeywordsOrCelebrities {
			break
		}
		token = page.NextToken
	}

	st.ClearPending()
	logger.Info("keyword results consumed",
		logging.String("job_id", jobID),
		logging.Int("keywords", len(st.Keywords)))
	return nil
}
