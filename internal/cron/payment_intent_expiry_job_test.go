package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

type fakeExpirer struct {
	cutoff  time.Time
	expired int64
	err     error
}

func (f *fakeExpirer) ExpireCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.expired, f.err
}

func newExpiryJob(t *testing.T, repo *fakeExpirer, ttl time.Duration) *paymentIntentExpiryJob {
	t.Helper()
	job, err := NewPaymentIntentExpiryJob(PaymentIntentExpiryJobParams{Logger: logger.Nop(), Intents: repo, TTL: ttl})
	if err != nil {
		t.Fatalf("NewPaymentIntentExpiryJob: %v", err)
	}
	return job.(*paymentIntentExpiryJob)
}

func TestPaymentIntentExpiryUsesTTL(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeExpirer{expired: 7}
	job := newExpiryJob(t, repo, 2*time.Hour)
	job.now = func() time.Time { return now }

	n, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 expired, got %d", n)
	}
	if want := now.Add(-2 * time.Hour); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestPaymentIntentExpiryDefaults(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeExpirer{}
	job := newExpiryJob(t, repo, 0)
	job.now = func() time.Time { return now }
	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-defaultPaymentIntentTTL); !repo.cutoff.Equal(want) {
		t.Fatalf("expected default cutoff %s, got %s", want, repo.cutoff)
	}
	if job.Name() != "payment-intent-expiry" {
		t.Fatalf("unexpected name %q", job.Name())
	}
}

func TestPaymentIntentExpiryPropagatesErrors(t *testing.T) {
	job := newExpiryJob(t, &fakeExpirer{err: errors.New("db down")}, time.Hour)
	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
