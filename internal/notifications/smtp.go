package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
)

const (
	smtpsPort   = 465
	dialTimeout = 10 * time.Second
)

type deliverFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPSender delivers messages through an authenticated SMTP relay.
type SMTPSender struct {
	fromName string
	fromAddr string
	deliver  deliverFunc
	now      func() time.Time
}

func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	sender := cfg.Sender()
	if sender == "" {
		return nil, errors.New("smtp sender address required")
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("smtp host required")
	}

	client, err := mail.NewClient(host, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{
		fromName: cfg.FromName,
		fromAddr: sender,
		deliver: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
		now: time.Now,
	}, nil
}

// clientOptions uses implicit TLS on 465 and STARTTLS when offered elsewhere.
func clientOptions(cfg config.SMTPConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(dialTimeout),
	}
	if cfg.Port == smtpsPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// compose builds a UTF-8 message; text and HTML together become
// multipart/alternative with the text part first.
func (s *SMTPSender) compose(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromAddr); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetMessageID()

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
