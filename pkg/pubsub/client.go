package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub notification topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client carries the notification topic and, for the worker, its
// subscription. Resource names are resolved once at construction.
type Client struct {
	client       *pubsub.Client
	projectID    string
	topic        string
	subscription string

	pubOnce   sync.Once
	publisher *pubsub.Publisher
}

// NewClient dials Pub/Sub for gcp.ProjectID and fails when the notification
// topic, or a configured subscription, is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.NotificationTopic) == "" {
		return nil, errTopicRequired
	}

	raw, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c, err := Wrap(ctx, raw, gcp.ProjectID, cfg)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"topic":        c.topic,
			"subscription": c.subscription,
		}), "pubsub client initialized")
	}
	return c, nil
}

// Wrap adopts an existing client, e.g. one dialed against the emulator.
func Wrap(ctx context.Context, raw *pubsub.Client, projectID string, cfg config.PubSubConfig) (*Client, error) {
	c := &Client{client: raw, projectID: strings.TrimSpace(projectID)}
	c.topic = c.topicResourceName(cfg.NotificationTopic)
	c.subscription = c.subscriptionResourceName(cfg.NotificationSubscription)
	if c.topic == "" {
		return nil, errTopicRequired
	}
	if err := c.verify(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) verify(ctx context.Context) error {
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	if err := describeLookup("topic", c.topic, err); err != nil {
		return err
	}
	if c.subscription == "" {
		return nil
	}
	_, err = c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: c.subscription})
	return describeLookup("subscription", c.subscription, err)
}

func describeLookup(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, name)
	default:
		return fmt.Errorf("checking %s %q: %w", kind, name, err)
	}
}

// NotificationPublisher is created on first use and shared afterwards.
func (c *Client) NotificationPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	c.pubOnce.Do(func() {
		c.publisher = c.client.Publisher(c.topic)
	})
	return c.publisher
}

// NotificationSubscription is nil when no subscription is configured.
func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil || c.subscription == "" {
		return nil
	}
	return c.client.Subscriber(c.subscription)
}

// Ping re-checks that the configured resources still exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.verify(ctx)
}

// Close flushes the shared publisher before closing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

func (c *Client) topicResourceName(name string) string {
	return resourceName(c.projectID, name, "topics")
}

func (c *Client) subscriptionResourceName(name string) string {
	return resourceName(c.projectID, name, "subscriptions")
}

// resourceName expands a short id to projects/<project>/<kind>/<id>. Full
// names pass through unchanged.
func resourceName(projectID, name, kind string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	if projectID = strings.TrimSpace(projectID); projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/" + kind + "/" + name
}
