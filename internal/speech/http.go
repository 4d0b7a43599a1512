package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used by the speech service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks to a speech service over HTTP. It implements both
// Transcriber and Synthesizer.
type HTTPClient struct {
	baseURL string
	client  HTTPDoer
}

// NewHTTPClient constructs a speech client for the given endpoint. A nil
// doer falls back to a plain client with the supplied timeout.
func NewHTTPClient(endpoint string, timeout time.Duration, doer HTTPDoer) *HTTPClient {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		client:  doer,
	}
}

type startTranscriptionRequest struct {
	JobName     string `json:"jobName"`
	MediaURI    string `json:"mediaUri"`
	MediaFormat string `json:"mediaFormat,omitempty"`
	Language    string `json:"language,omitempty"`
}

type transcriptionResponse struct {
	Name          string `json:"name"`
	Status        string `json:"status"`
	TranscriptURI string `json:"transcriptUri"`
	FailureReason string `json:"failureReason"`
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

func (c *HTTPClient) StartTranscription(ctx context.Context, in StartTranscriptionInput) error {
	if c.baseURL == "" {
		return fmt.Errorf("speech endpoint is not configured")
	}
	body, err := json.Marshal(startTranscriptionRequest{
		JobName:     in.JobName,
		MediaURI:    in.MediaURI,
		MediaFormat: in.MediaFormat,
		Language:    in.Language,
	})
	if err != nil {
		return fmt.Errorf("encode transcription request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transcriptions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("start transcription: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("speech service returned %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) GetTranscription(ctx context.Context, jobName string) (*TranscriptionJob, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("speech endpoint is not configured")
	}
	target := c.baseURL + "/v1/transcriptions/" + url.PathEscape(jobName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("speech service returned %d", resp.StatusCode)
	}
	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	return &TranscriptionJob{
		Name:          out.Name,
		Status:        out.Status,
		TranscriptURI: out.TranscriptURI,
		FailureReason: out.FailureReason,
	}, nil
}

func (c *HTTPClient) FetchTranscript(ctx context.Context, transcriptURI string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptURI, nil)
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("transcript fetch returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("speech endpoint is not configured")
	}
	body, err := json.Marshal(synthesizeRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("speech service returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
