package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Ingester-Go/0.1.0"

// HTTPDoer describes the HTTP client used by the topic publisher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPPublisher posts messages to an ntfy-compatible server, one URL path
// per topic.
type HTTPPublisher struct {
	endpoint string
	client   HTTPDoer
}

// NewHTTPPublisher constructs a publisher for the given server endpoint. A
// nil doer falls back to a plain client with the supplied timeout.
func NewHTTPPublisher(endpoint string, timeout time.Duration, doer HTTPDoer) *HTTPPublisher {
	if doer == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &HTTPPublisher{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		client:   doer,
	}
}

func (p *HTTPPublisher) Publish(ctx context.Context, topic, subject, message string) error {
	if p == nil || p.client == nil || p.endpoint == "" {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("notification topic is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/"+topic, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if subject = strings.TrimSpace(subject); subject != "" {
		req.Header.Set("Title", subject)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notification server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
