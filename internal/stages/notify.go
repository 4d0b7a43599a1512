package stages

import (
	"context"

	"ingester/internal/logging"
	"ingester/internal/services"
	"ingester/internal/state"
)

// maxSubjectLength bounds the notification subject; longer subjects fall
// back to a generic one.
const maxSubjectLength = 100

// NotifyComplete publishes the final state record to the ingest-completed
// topic. With no topic configured the stage logs and moves on.
type NotifyComplete struct {
	env Env
}

func NewNotifyComplete(env Env) *NotifyComplete {
	return &NotifyComplete{env: env}
}

func (s *NotifyComplete) Name() string { return StageNotifyComplete }

func (s *NotifyComplete) Execute(ctx context.Context, st *state.State) error {
	logger := s.env.log(ctx, s.Name())

	topic := s.env.Config.Notifications.IngestCompletedTopic
	if topic == "" {
		logger.Info("no completion topic configured, skipping notification")
		return nil
	}

	subject := "Ingest completed for " + st.Describe()
	if len(subject) >= maxSubjectLength {
		subject = "Ingest completed"
	}
	body, err := st.Encode()
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "encode state", "state record is not encodable", err)
	}
	if err := s.env.Publisher.Publish(ctx, topic, subject, string(body)); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "publish", "could not publish completion", err)
	}
	logger.Info("completion published", logging.String("topic", topic))
	return nil
}
