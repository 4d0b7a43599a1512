package inference

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

// HTTPDoer describes the HTTP client used by the detection service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks to an image/video analysis service over HTTP. It
// implements both Detector and AsyncDetector.
type HTTPClient struct {
	baseURL string
	client  HTTPDoer
}

// NewHTTPClient constructs a detection client for the given endpoint. A nil
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

type detectRequest struct {
	Bucket        string  `json:"bucket"`
	Key           string  `json:"key"`
	MinConfidence float64 `json:"minConfidence,omitempty"`
}

type detectResponse struct {
	Labels []Label `json:"labels"`
}

type startJobRequest struct {
	Bucket        string  `json:"bucket"`
	Key           string  `json:"key"`
	MinConfidence float64 `json:"minConfidence,omitempty"`
	NotifyTopic   string  `json:"notifyTopic,omitempty"`
	RoleArn       string  `json:"roleArn,omitempty"`
}

type startJobResponse struct {
	JobID string `json:"jobId"`
}

type pageResponse struct {
	Status    string  `json:"status"`
	Labels    []Label `json:"labels"`
	NextToken string  `json:"nextToken"`
}

func (c *HTTPClient) DetectModerationLabels(ctx context.Context, bucket, key string, minConfidence float64) ([]Label, error) {
	return c.detect(ctx, "/v1/detect/moderation", bucket, key, minConfidence)
}

func (c *HTTPClient) DetectLabels(ctx context.Context, bucket, key string, minConfidence float64) ([]Label, error) {
	return c.detect(ctx, "/v1/detect/labels", bucket, key, minConfidence)
}

func (c *HTTPClient) RecognizeCelebrities(ctx context.Context, bucket, key string) ([]Label, error) {
	return c.detect(ctx, "/v1/detect/celebrities", bucket, key, 0)
}

func (c *HTTPClient) detect(ctx context.Context, path, bucket, key string, minConfidence float64) ([]Label, error) {
	var out detectResponse
	err := c.post(ctx, path, detectRequest{Bucket: bucket, Key: key, MinConfidence: minConfidence}, &out)
	if err != nil {
		return nil, err
	}
	return out.Labels, nil
}

func (c *HTTPClient) StartContentModeration(ctx context.Context, in StartJobInput) (string, error) {
	return c.startJob(ctx, "/v1/jobs/moderation", in)
}

func (c *HTTPClient) StartLabelDetection(ctx context.Context, in StartJobInput) (string, error) {
	return c.startJob(ctx, "/v1/jobs/labels", in)
}

func (c *HTTPClient) StartCelebrityRecognition(ctx context.Context, in StartJobInput) (string, error) {
	return c.startJob(ctx, "/v1/jobs/celebrities", in)
}

func (c *HTTPClient) startJob(ctx context.Context, path string, in StartJobInput) (string, error) {
	var out startJobResponse
	req := startJobRequest{
		Bucket:        in.Bucket,
		Key:           in.Key,
		MinConfidence: in.MinConfidence,
		NotifyTopic:   in.NotifyTopic,
		RoleArn:       in.RoleARN,
	}
	if err := c.post(ctx, path, req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.JobID) == "" {
		return "", fmt.Errorf("detection service returned empty job id")
	}
	return out.JobID, nil
}

func (c *HTTPClient) GetContentModeration(ctx context.Context, jobID, nextToken string) (*ModerationPage, error) {
	page, err := c.getPage(ctx, "/v1/jobs/moderation", jobID, nextToken)
	if err != nil {
		return nil, err
	}
	return &ModerationPage{Status: page.Status, Labels: page.Labels, NextToken: page.NextToken}, nil
}

func (c *HTTPClient) GetLabelDetection(ctx context.Context, jobID, nextToken string) (*LabelPage, error) {
	page, err := c.getPage(ctx, "/v1/jobs/labels", jobID, nextToken)
	if err != nil {
		return nil, err
	}
	return &LabelPage{Status: page.Status, Labels: page.Labels, NextToken: page.NextToken}, nil
}

func (c *HTTPClient) GetCelebrityRecognition(ctx context.Context, jobID, nextToken string) (*CelebrityPage, error) {
	page, err := c.getPage(ctx, "/v1/jobs/celebrities", jobID, nextToken)
	if err != nil {
		return nil, err
	}
	return &CelebrityPage{Status: page.Status, Celebrities: page.Labels, NextToken: page.NextToken}, nil
}

func (c *HTTPClient) getPage(ctx context.Context, path, jobID, nextToken string) (*pageResponse, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("detection endpoint is not configured")
	}
	query := url.Values{}
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}
	target := fmt.Sprintf("%s%s/%s", c.baseURL, path, url.PathEscape(jobID))
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build detection request: %w", err)
	}
	var out pageResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("detection endpoint is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode detection request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build detection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call detection service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("detection service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode detection response: %w", err)
	}
	return nil
}
