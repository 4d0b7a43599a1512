package notifications

import (
	"context"
	"sync"
)

// Published is one captured notification.
type Published struct {
	Topic   string
	Subject string
	Message string
}

// Capture records published notifications for inspection in tests.
type Capture struct {
	mu   sync.Mutex
	sent []Published
}

// NewCapture returns an empty capture publisher.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Publish(ctx context.Context, topic, subject, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Published{Topic: topic, Subject: subject, Message: message})
	return nil
}

// Sent returns all captured notifications in publish order.
func (c *Capture) Sent() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.sent...)
}
