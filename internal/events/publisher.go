package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event topics consumed by downstream services (notifications, analytics).
const (
	TopicTestSubmitted = "exam.test_submitted"
	TopicScoresUpdated = "exam.scores_updated"
)

// Event is the envelope published after state changes. Payload stays loose
// on purpose: consumers only depend on the fields they read.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	StudentID  string                 `json:"student_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Marshal serializes the event for the wire.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// EventPublisher publishes domain events. Publish failures are the caller's
// to log; they must never fail the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
