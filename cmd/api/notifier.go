package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Ramchandran06/E-commerce-backend/api/controllers"
	"github.com/Ramchandran06/E-commerce-backend/internal/notifications"
	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
	"github.com/Ramchandran06/E-commerce-backend/pkg/pubsub"
)

const notifierDrainTimeout = 10 * time.Second

// apiNotifier is the dispatcher plus whatever transport it owns.
type apiNotifier struct {
	*notifications.Dispatcher
	pinger controllers.Pinger
	closer func() error
}

func newNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.OrderMetrics) (*apiNotifier, error) {
	out := &apiNotifier{}

	var sender notifications.Sender
	switch cfg.Notifications.Transport {
	case config.NotifyTransportPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, fmt.Errorf("pubsub client: %w", err)
		}
		ps, err := notifications.NewPubSubSender(client.NotificationPublisher())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		sender = ps
		out.pinger = client
		out.closer = client.Close
	case config.NotifyTransportLog:
		sender = notifications.NewLogSender(logg)
	default:
		smtpSender, err := notifications.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("smtp sender: %w", err)
		}
		sender = smtpSender
	}

	dispatcher, err := notifications.NewDispatcher(sender, notifications.DispatcherOptions{
		Workers:     cfg.Notifications.Workers,
		QueueSize:   cfg.Notifications.QueueSize,
		SendTimeout: cfg.Notifications.SendTimeout,
	}, logg, m)
	if err != nil {
		if out.closer != nil {
			_ = out.closer()
		}
		return nil, err
	}
	out.Dispatcher = dispatcher
	return out, nil
}

// close drains queued emails before the transport goes away.
func (n *apiNotifier) close(ctx context.Context, logg *logger.Logger) {
	drainCtx, cancel := context.WithTimeout(context.Background(), notifierDrainTimeout)
	defer cancel()
	if err := n.Dispatcher.Close(drainCtx); err != nil {
		logg.Warn(ctx, "notification queue not fully drained: "+err.Error())
	}
	if n.closer != nil {
		if err := n.closer(); err != nil {
			logg.Error(ctx, "error closing notification transport", err)
		}
	}
}
