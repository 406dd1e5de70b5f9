package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
)

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	return "server-1", r.err
}

type fakePublisher struct {
	messages []*pubsub.Message
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return fakeResult{err: f.err}
}

func TestEventPublisherWrapsEnvelope(t *testing.T) {
	fake := &fakePublisher{}
	pub := newEventPublisher(fake)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }
	pub.newID = func() string { return "evt-1" }

	id, err := pub.Publish(context.Background(), "checkout.completed", "attempt-1", map[string]string{"order_id": "42"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != "evt-1" {
		t.Fatalf("expected event id evt-1, got %s", id)
	}
	if len(fake.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(fake.messages))
	}

	msg := fake.messages[0]
	if msg.Attributes["event_type"] != "checkout.completed" || msg.Attributes["aggregate_id"] != "attempt-1" {
		t.Fatalf("unexpected attributes %+v", msg.Attributes)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Version != 1 || !env.OccurredAt.Equal(fixed) {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if string(env.Data) != `{"order_id":"42"}` {
		t.Fatalf("unexpected data %s", env.Data)
	}
}

func TestEventPublisherPropagatesFailure(t *testing.T) {
	pub := newEventPublisher(&fakePublisher{err: errors.New("unavailable")})
	if _, err := pub.Publish(context.Background(), "checkout.completed", "a", nil); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestNilEventPublisher(t *testing.T) {
	var pub *EventPublisher
	if _, err := pub.Publish(context.Background(), "x", "y", nil); err == nil {
		t.Fatal("expected error from nil publisher")
	}
}

func TestTopicResourceName(t *testing.T) {
	if got := topicResourceName("proj", "checkout-events"); got != "projects/proj/topics/checkout-events" {
		t.Fatalf("unexpected name %s", got)
	}
	if got := topicResourceName("proj", "projects/other/topics/t"); got != "projects/other/topics/t" {
		t.Fatalf("full names should pass through, got %s", got)
	}
	if got := topicResourceName("", "t"); got != "" {
		t.Fatalf("expected empty name without project, got %s", got)
	}
}

func TestTopicResourceNameTable(t *testing.T) {
	tests := map[string]struct {
		project, name, want string
	}{
		"bare id":       {"shop", "checkout-events", "projects/shop/topics/checkout-events"},
		"full name":     {"", "projects/other/topics/x", "projects/other/topics/x"},
		"missing topic": {"shop", " ", ""},
		"no project":    {"", "checkout-events", ""},
	}
	for name, tt := range tests {
		if got := topicResourceName(tt.project, tt.name); got != tt.want {
			t.Fatalf("%s: expected %q got %q", name, tt.want, got)
		}
	}
}
