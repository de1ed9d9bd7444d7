package notifications

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// Message is a single customer email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient required")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return errors.New("recipient is not a valid address")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject required")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("message body required")
	}
	return nil
}

// Sender delivers a message over some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier queues a message for best-effort delivery. Implementations never
// block the caller and never report delivery failures back.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// NopNotifier discards every message.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Message) {}
