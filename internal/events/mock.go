package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MockEventPublisher records events in memory. Used in tests and as the
// publisher of last resort when no broker is configured.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
	closed bool
}

// NewMockEventPublisher creates a new in-memory publisher.
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	p.events = append(p.events, event)

	if p.logger != nil {
		p.logger.Debug("event published",
			"event_type", event.Type,
			"student_id", event.StudentID)
	}
	return nil
}

func (p *MockEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// GetPublishedEvents returns a copy of everything published so far.
func (p *MockEventPublisher) GetPublishedEvents() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
