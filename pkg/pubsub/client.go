package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub checkout topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client owns the Pub/Sub connection and the single publisher used for
// checkout lifecycle events.
type Client struct {
	client    *pubsub.Client
	topic     string
	publisher *pubsub.Publisher
}

// NewClient connects to Pub/Sub and fails fast when the checkout topic is
// missing, so a misconfigured deploy never silently drops events.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	topic := topicResourceName(projectID, cfg.CheckoutTopic)
	if topic == "" {
		return nil, errTopicRequired
	}

	psClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, topic: topic}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}
	c.publisher = psClient.Publisher(topic)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", topic), "pubsub client initialized")
	}
	return c, nil
}

// CheckoutPublisher returns the shared publisher for the checkout topic.
func (c *Client) CheckoutPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	return c.publisher
}

// Ping checks that the checkout topic still exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %q does not exist", c.topic)
	default:
		return fmt.Errorf("checking topic %q: %w", c.topic, err)
	}
}

// Close flushes pending publishes before releasing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

// topicResourceName expands a bare topic id to projects/<p>/topics/<id>. Full
// resource names pass through unchanged.
func topicResourceName(projectID, name string) string {
	n := strings.TrimSpace(name)
	switch {
	case n == "":
		return ""
	case strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/"):
		return n
	case strings.TrimSpace(projectID) == "":
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", strings.TrimSpace(projectID), n)
}
