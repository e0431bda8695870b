package connector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frostline-games/support-agent/internal/domain"
)

// SentReply captures one outbound reply for inspection.
type SentReply struct {
	ThreadID string
	Text     string
}

// MockConnector is the in-memory channel used in mock mode and tests.
// Messages are pushed in and replies are captured.
type MockConnector struct {
	mu      sync.Mutex
	queue   []domain.MessageEvent
	replies []SentReply
}

// NewMockConnector creates an empty mock channel.
func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

// Channel identifies this connector's transport.
func (c *MockConnector) Channel() domain.Channel {
	return domain.ChannelMock
}

// Push queues an inbound message, filling in id and timestamp when absent.
func (c *MockConnector) Push(event domain.MessageEvent) domain.MessageEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	event.Channel = domain.ChannelMock
	if event.MessageID == "" {
		event.MessageID = "msg-" + uuid.NewString()
	}
	if event.TimestampMs == 0 {
		event.TimestampMs = time.Now().UnixMilli()
	}
	c.queue = append(c.queue, event)
	return event
}

// FetchNewMessages returns queued messages newer than sinceMs.
func (c *MockConnector) FetchNewMessages(_ context.Context, sinceMs int64) ([]domain.MessageEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var batch []domain.MessageEvent
	for _, event := range c.queue {
		if event.TimestampMs > sinceMs {
			batch = append(batch, event)
		}
	}
	return batch, nil
}

// SendReply records the outbound reply.
func (c *MockConnector) SendReply(_ context.Context, threadID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, SentReply{ThreadID: threadID, Text: text})
	return nil
}

// SentReplies returns a copy of all captured replies.
func (c *MockConnector) SentReplies() []SentReply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentReply(nil), c.replies...)
}
