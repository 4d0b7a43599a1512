package notifications

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Receiver yields raw message payloads published to a topic since the last
// call. The daemon polls one to pick up async-scan completions.
type Receiver interface {
	Receive(ctx context.Context) ([][]byte, error)
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(ctx context.Context) ([][]byte, error)

func (f ReceiverFunc) Receive(ctx context.Context) ([][]byte, error) {
	return f(ctx)
}

// HTTPReceiver polls an ntfy-compatible server for messages on one topic,
// remembering the last seen message id between calls.
type HTTPReceiver struct {
	endpoint string
	topic    string
	client   HTTPDoer

	mu    sync.Mutex
	since string
}

// NewHTTPReceiver constructs a receiver for the topic on the given server
// endpoint. A nil doer falls back to a plain client with the supplied
// timeout.
func NewHTTPReceiver(endpoint, topic string, timeout time.Duration, doer HTTPDoer) *HTTPReceiver {
	if doer == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &HTTPReceiver{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		topic:    strings.TrimSpace(topic),
		client:   doer,
		since:    "all",
	}
}

type receivedEvent struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Message string `json:"message"`
}

func (r *HTTPReceiver) Receive(ctx context.Context) ([][]byte, error) {
	if r == nil || r.client == nil || r.endpoint == "" || r.topic == "" {
		return nil, nil
	}
	r.mu.Lock()
	since := r.since
	r.mu.Unlock()

	target := fmt.Sprintf("%s/%s/json?poll=1&since=%s", r.endpoint, r.topic, since)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll topic %s: %w", r.topic, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("notification server returned %d", resp.StatusCode)
	}

	var payloads [][]byte
	lastID := ""
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event receivedEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		if event.ID != "" {
			lastID = event.ID
		}
		if event.Event != "" && event.Event != "message" {
			continue
		}
		if event.Message != "" {
			payloads = append(payloads, []byte(event.Message))
		}
	}
	if err := scanner.Err(); err != nil {
		return payloads, fmt.Errorf("read poll response: %w", err)
	}

	if lastID != "" {
		r.mu.Lock()
		r.since = lastID
		r.mu.Unlock()
	}
	return payloads, nil
}
