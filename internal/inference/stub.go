package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Completion is a finished async job the stub has announced. The daemon's
// completion poller drains these when no real notification feed exists.
type Completion struct {
	JobID  string
	Status string
}

type stubJob struct {
	status string
	pages  [][]Label
}

// Stub is an in-process detector for local operation and tests. Sync scans
// answer from preloaded fixtures keyed by object key; async jobs complete
// immediately with the configured pages.
type Stub struct {
	mu sync.Mutex

	moderation  map[string][]Label
	labels      map[string][]Label
	celebrities map[string][]Label

	asyncStatus string
	jobs        map[string]stubJob
	completions []Completion
}

// NewStub returns an empty stub whose async jobs succeed.
func NewStub() *Stub {
	return &Stub{
		moderation:  make(map[string][]Label),
		labels:      make(map[string][]Label),
		celebrities: make(map[string][]Label),
		asyncStatus: StatusSucceeded,
		jobs:        make(map[string]stubJob),
	}
}

// SetModeration preloads moderation labels for an object key.
func (s *Stub) SetModeration(key string, labels ...Label) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moderation[key] = labels
}

// SetLabels preloads descriptive labels for an object key.
func (s *Stub) SetLabels(key string, labels ...Label) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[key] = labels
}

// SetCelebrities preloads celebrity results for an object key.
func (s *Stub) SetCelebrities(key string, labels ...Label) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.celebrities[key] = labels
}

// FailAsyncJobs makes subsequently started async jobs report FAILED.
func (s *Stub) FailAsyncJobs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asyncStatus = StatusFailed
}

func (s *Stub) DetectModerationLabels(ctx context.Context, bucket, key string, minConfidence float64) ([]Label, error) {
	return s.lookup(s.moderation, key, minConfidence), nil
}

func (s *Stub) DetectLabels(ctx context.Context, bucket, key string, minConfidence float64) ([]Label, error) {
	return s.lookup(s.labels, key, minConfidence), nil
}

func (s *Stub) RecognizeCelebrities(ctx context.Context, bucket, key string) ([]Label, error) {
	return s.lookup(s.celebrities, key, 0), nil
}

func (s *Stub) lookup(table map[string][]Label, key string, minConfidence float64) []Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Label
	for _, label := range table[key] {
		if label.Confidence >= minConfidence {
			out = append(out, label)
		}
	}
	return out
}

func (s *Stub) StartContentModeration(ctx context.Context, in StartJobInput) (string, error) {
	return s.start(s.pagesFor(s.moderation, in.Key, in.MinConfidence))
}

func (s *Stub) StartLabelDetection(ctx context.Context, in StartJobInput) (string, error) {
	return s.start(s.pagesFor(s.labels, in.Key, in.MinConfidence))
}

func (s *Stub) StartCelebrityRecognition(ctx context.Context, in StartJobInput) (string, error) {
	return s.start(s.pagesFor(s.celebrities, in.Key, 0))
}

// pagesFor splits the fixture results into pages of at most two labels so
// callers exercise pagination.
func (s *Stub) pagesFor(table map[string][]Label, key string, minConfidence float64) [][]Label {
	results := s.lookup(table, key, minConfidence)
	if len(results) == 0 {
		return [][]Label{nil}
	}
	var pages [][]Label
	for len(results) > 0 {
		n := min(2, len(results))
		pages = append(pages, results[:n])
		results = results[n:]
	}
	return pages
}

func (s *Stub) start(pages [][]Label) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobID := uuid.NewString()
	s.jobs[jobID] = stubJob{status: s.asyncStatus, pages: pages}
	s.completions = append(s.completions, Completion{JobID: jobID, Status: s.asyncStatus})
	return jobID, nil
}

func (s *Stub) GetContentModeration(ctx context.Context, jobID, nextToken string) (*ModerationPage, error) {
	page, err := s.page(jobID, nextToken)
	if err != nil {
		return nil, err
	}
	return &ModerationPage{Status: page.Status, Labels: page.Labels, NextToken: page.NextToken}, nil
}

func (s *Stub) GetLabelDetection(ctx context.Context, jobID, nextToken string) (*LabelPage, error) {
	page, err := s.page(jobID, nextToken)
	if err != nil {
		return nil, err
	}
	return &LabelPage{Status: page.Status, Labels: page.Labels, NextToken: page.NextToken}, nil
}

func (s *Stub) GetCelebrityRecognition(ctx context.Context, jobID, nextToken string) (*CelebrityPage, error) {
	page, err := s.page(jobID, nextToken)
	if err != nil {
		return nil, err
	}
	return &CelebrityPage{Status: page.Status, Celebrities: page.Labels, NextToken: page.NextToken}, nil
}

func (s *Stub) page(jobID, nextToken string) (*pageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("unknown job %s", jobID)
	}
	index := 0
	if nextToken != "" {
		if _, err := fmt.Sscanf(nextToken, "page-%d", &index); err != nil {
			return nil, fmt.Errorf("bad next token %q", nextToken)
		}
	}
	if index < 0 || index >= len(job.pages) {
		return nil, fmt.Errorf("bad next token %q", nextToken)
	}
	page := &pageResponse{Status: job.status, Labels: job.pages[index]}
	if index+1 < len(job.pages) {
		page.NextToken = fmt.Sprintf("page-%d", index+1)
	}
	return page, nil
}

// DrainCompletions returns and clears the announced completions.
func (s *Stub) DrainCompletions() []Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.completions
	s.completions = nil
	return out
}

// String describes the stub for startup logging.
func (s *Stub) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var parts []string
	for name, table := range map[string]map[string][]Label{
		"moderation": s.moderation, "labels": s.labels, "celebrities": s.celebrities,
	} {
		if len(table) > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", name, len(table)))
		}
	}
	if len(parts) == 0 {
		return "inference stub (empty)"
	}
	return "inference stub (" + strings.Join(parts, " ") + ")"
}
