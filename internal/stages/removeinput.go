package stages

import (
	"context"

	"ingester/internal/services"
	"ingester/internal/state"
)

// RemoveInput deletes the original object from the inbox. It runs for every
// terminal path, including unsafe and unrecognized media.
type RemoveInput struct {
	env Env
}

func NewRemoveInput(env Env) *RemoveInput {
	return &RemoveInput{env: env}
}

func (s *RemoveInput) Name() string { return StageRemoveInput }

func (s *RemoveInput) Execute(ctx context.Context, st *state.State) error {
	if err := s.env.Store.Delete(ctx, st.Bucket, st.InputObjectKey); err != nil {
		return services.Wrap(services.ErrExternalService, s.Name(), "delete object", "could not remove input object", err)
	}
	s.env.log(ctx, s.Name()).Info("input object removed")
	return nil
}
