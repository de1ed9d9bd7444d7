package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

const (
	attrKind      = "kind"
	attrMessageID = "message_id"
	kindEmail     = "email"
)

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// PubSubSender hands emails to the notification worker through a topic.
type PubSubSender struct {
	publisher publisher
}

func NewPubSubSender(p publisher) (*PubSubSender, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &PubSubSender{publisher: p}, nil
}

func (s *PubSubSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			attrKind:      kindEmail,
			attrMessageID: uuid.NewString(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject}), "notification (log transport)")
	}
	return nil
}
