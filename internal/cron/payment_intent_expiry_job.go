package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

const (
	paymentIntentExpiryJobName = "payment-intent-expiry"
	defaultPaymentIntentTTL    = 24 * time.Hour
)

type intentExpirer interface {
	ExpireCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PaymentIntentExpiryJobParams struct {
	Logger  *logger.Logger
	Intents intentExpirer
	TTL     time.Duration
}

// NewPaymentIntentExpiryJob expires gateway orders nobody paid within TTL so
// a late callback cannot turn them into an order.
func NewPaymentIntentExpiryJob(params PaymentIntentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Intents == nil {
		return nil, fmt.Errorf("payment intent repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPaymentIntentTTL
	}
	return &paymentIntentExpiryJob{
		logg:    params.Logger,
		intents: params.Intents,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

type paymentIntentExpiryJob struct {
	logg    *logger.Logger
	intents intentExpirer
	ttl     time.Duration
	now     func() time.Time
}

func (j *paymentIntentExpiryJob) Name() string { return paymentIntentExpiryJobName }

func (j *paymentIntentExpiryJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.ttl)
	expired, err := j.intents.ExpireCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire payment intents: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"cutoff":  cutoff,
			"expired": expired,
		}), "stale payment intents expired")
	}
	return expired, nil
}
