package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
)

const emailConsumerName = "notification-email"

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type deduper interface {
	CheckAndMark(ctx context.Context, consumer, messageID string) (bool, error)
	Release(ctx context.Context, consumer, messageID string) error
}

// Consumer drains the notification subscription and delivers each email once.
type Consumer struct {
	subscription receiver
	sender       Sender
	dedupe       deduper
	logg         *logger.Logger
	metrics      *metrics.OrderMetrics
}

func NewConsumer(subscription receiver, sender Sender, dedupe deduper, logg *logger.Logger, m *metrics.OrderMetrics) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if sender == nil {
		return nil, fmt.Errorf("notification sender required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("dedupe manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		sender:       sender,
		dedupe:       dedupe,
		logg:         logg,
		metrics:      m,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	messageID := msg.Attributes[attrMessageID]
	if messageID == "" {
		messageID = msg.ID
	}
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id":    messageID,
		"pubsub_msg_id": msg.ID,
	})

	if kind := msg.Attributes[attrKind]; kind != "" && kind != kindEmail {
		c.logg.Info(logCtx, "skipping non-email message")
		return processResult{ack: true}
	}

	var payload Message
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode notification", err)
		return processResult{ack: true}
	}
	if err := payload.Validate(); err != nil {
		c.logg.Error(logCtx, "invalid notification payload", err)
		return processResult{ack: true}
	}

	seen, err := c.dedupe.CheckAndMark(ctx, emailConsumerName, messageID)
	if err != nil {
		c.logg.Error(logCtx, "dedupe check failed", err)
		return processResult{nack: true}
	}
	if seen {
		c.logg.Info(logCtx, "notification already delivered")
		c.metrics.Notification("duplicate")
		return processResult{ack: true}
	}

	if err := c.sender.Send(ctx, payload); err != nil {
		c.logg.Error(logCtx, "notification delivery failed", err)
		c.metrics.Notification("failed")
		if relErr := c.dedupe.Release(ctx, emailConsumerName, messageID); relErr != nil {
			c.logg.Error(logCtx, "failed to release dedupe key", relErr)
		}
		return processResult{nack: true}
	}

	c.metrics.Notification("sent")
	c.logg.Info(logCtx, "notification delivered")
	return processResult{ack: true}
}
