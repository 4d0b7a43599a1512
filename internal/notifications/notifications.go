package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Publisher sends a message to a named topic. The workflow publishes to two
// topics: async-scan completions (consumed by the daemon itself) and ingest
// completions (consumed by operators).
type Publisher interface {
	Publish(ctx context.Context, topic, subject, message string) error
}

// CompletionMessage is the payload announcing that an asynchronous scan job
// finished.
type CompletionMessage struct {
	JobID  string `json:"JobId"`
	Status string `json:"Status"`
}

// ParseCompletion decodes a completion payload. The job id must be present;
// other fields in the payload are ignored.
func ParseCompletion(payload []byte) (*CompletionMessage, error) {
	var msg CompletionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("parse completion message: %w", err)
	}
	if strings.TrimSpace(msg.JobID) == "" {
		return nil, fmt.Errorf("completion message has no job id")
	}
	return &msg, nil
}

// Encode renders the message as a JSON payload.
func (m CompletionMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, topic, subject, message string) error {
	return nil
}

// NewNoop returns a publisher that drops everything.
func NewNoop() Publisher {
	return noopPublisher{}
}
