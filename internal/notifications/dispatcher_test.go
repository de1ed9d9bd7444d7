package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func validMessage(subject string) Message {
	return Message{To: "asha@example.com", Subject: subject, Text: "hello"}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sender := &recordingSender{}
	d, err := NewDispatcher(sender, DispatcherOptions{Workers: 2, QueueSize: 10}, logger.Nop(), nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), validMessage("order"))
	}
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 5, sender.count())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(reg)
	sender := &recordingSender{block: make(chan struct{})}
	d, err := NewDispatcher(sender, DispatcherOptions{Workers: 1, QueueSize: 1}, logger.Nop(), m)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(context.Background(), validMessage("burst"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(sender.block)
	require.NoError(t, d.Close(context.Background()))

	delivered := sender.count()
	assert.GreaterOrEqual(t, delivered, 1)
	assert.LessOrEqual(t, delivered, 2)
	dropped := outcomeCount(t, reg, "dropped")
	assert.Equal(t, float64(10-delivered), dropped)
}

func TestDispatcherCallerContextCancellationDoesNotAbortSend(t *testing.T) {
	sender := &recordingSender{}
	d, err := NewDispatcher(sender, DispatcherOptions{Workers: 1}, logger.Nop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, validMessage("order"))
	cancel()

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, sender.count())
}

func TestDispatcherSkipsInvalidAndAfterClose(t *testing.T) {
	sender := &recordingSender{}
	d, err := NewDispatcher(sender, DispatcherOptions{}, logger.Nop(), nil)
	require.NoError(t, err)

	d.Notify(context.Background(), Message{Subject: "no recipient", Text: "x"})
	require.NoError(t, d.Close(context.Background()))
	d.Notify(context.Background(), validMessage("late"))
	assert.Equal(t, 0, sender.count())
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherSendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d, err := NewDispatcher(sender, DispatcherOptions{Workers: 1}, logger.Nop(), nil)
	require.NoError(t, err)
	d.Notify(context.Background(), validMessage("order"))
	require.NoError(t, d.Close(context.Background()))
}

func TestNewDispatcherValidation(t *testing.T) {
	_, err := NewDispatcher(nil, DispatcherOptions{}, logger.Nop(), nil)
	assert.Error(t, err)
	_, err = NewDispatcher(&recordingSender{}, DispatcherOptions{}, nil, nil)
	assert.Error(t, err)
}

func outcomeCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "shop_notifications_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
