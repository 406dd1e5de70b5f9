package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const defaultPublishTimeout = 10 * time.Second

// Envelope is the JSON body of every published event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

// EventPublisher serializes domain events and pushes them to a single topic.
type EventPublisher struct {
	pub     publisher
	now     func() time.Time
	newID   func() string
	timeout time.Duration
}

// NewEventPublisher wraps a v2 publisher handle.
func NewEventPublisher(p *pubsub.Publisher) *EventPublisher {
	if p == nil {
		return nil
	}
	return newEventPublisher(&gcpPublisher{Publisher: p})
}

func newEventPublisher(p publisher) *EventPublisher {
	return &EventPublisher{
		pub:     p,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
		timeout: defaultPublishTimeout,
	}
}

// Publish wraps data in an Envelope and blocks until the server acknowledges it.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, aggregateID string, data any) (string, error) {
	if p == nil || p.pub == nil {
		return "", errors.New("event publisher not configured")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	envelope := Envelope{
		Version:    1,
		EventID:    p.newID(),
		EventType:  eventType,
		OccurredAt: p.now(),
		Data:       raw,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	msg := &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":     envelope.EventID,
			"event_type":   eventType,
			"aggregate_id": aggregateID,
			"created_at":   envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return "", fmt.Errorf("publisher returned nil for %s", eventType)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return "", fmt.Errorf("publish %s: %w", eventType, err)
	}
	return envelope.EventID, nil
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*pubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
