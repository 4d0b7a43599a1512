package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Stub is an in-process speech service for local operation and tests.
// Transcription jobs complete on the first poll with a canned transcript;
// synthesis returns a deterministic payload.
type Stub struct {
	mu          sync.Mutex
	transcript  string
	failReason  string
	jobs        map[string]StartTranscriptionInput
	synthesized []string
}

// NewStub returns a stub whose transcriptions produce the given transcript
// text.
func NewStub(transcript string) *Stub {
	return &Stub{transcript: transcript, jobs: make(map[string]StartTranscriptionInput)}
}

// FailTranscriptions makes subsequent jobs report FAILED with the reason.
func (s *Stub) FailTranscriptions(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReason = reason
}

func (s *Stub) StartTranscription(ctx context.Context, in StartTranscriptionInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(in.JobName) == "" {
		return fmt.Errorf("transcription job name is empty")
	}
	if _, exists := s.jobs[in.JobName]; exists {
		return fmt.Errorf("transcription job %s already exists", in.JobName)
	}
	s.jobs[in.JobName] = in
	return nil
}

func (s *Stub) GetTranscription(ctx context.Context, jobName string) (*TranscriptionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobName]; !ok {
		return nil, fmt.Errorf("unknown transcription job %s", jobName)
	}
	if s.failReason != "" {
		return &TranscriptionJob{Name: jobName, Status: TranscriptionFailed, FailureReason: s.failReason}, nil
	}
	return &TranscriptionJob{
		Name:          jobName,
		Status:        TranscriptionCompleted,
		TranscriptURI: "stub://transcripts/" + jobName,
	}, nil
}

func (s *Stub) FetchTranscript(ctx context.Context, transcriptURI string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := map[string]any{
		"results": map[string]any{
			"transcripts": []map[string]string{{"transcript": s.transcript}},
		},
	}
	return json.Marshal(doc)
}

func (s *Stub) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synthesized = append(s.synthesized, text)
	return []byte("MP3:" + voiceID + ":" + text), nil
}

// Synthesized returns the texts passed to Synthesize, in order.
func (s *Stub) Synthesized() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.synthesized...)
}
