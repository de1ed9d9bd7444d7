package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 256
	defaultSendTimeout = 15 * time.Second
)

type DispatcherOptions struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

type job struct {
	ctx context.Context
	msg Message
}

// Dispatcher hands messages to a Sender on background workers. The queue is
// bounded; when it is full new messages are dropped.
type Dispatcher struct {
	sender  Sender
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
	timeout time.Duration

	queue chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, opts DispatcherOptions, logg *logger.Logger, m *metrics.OrderMetrics) (*Dispatcher, error) {
	if sender == nil {
		return nil, errors.New("notification sender required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	d := &Dispatcher{
		sender:  sender,
		logg:    logg,
		metrics: m,
		timeout: opts.SendTimeout,
		queue:   make(chan job, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d, nil
}

// Notify enqueues msg and returns immediately.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	if ctx == nil {
		ctx = context.Background()
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{"subject": msg.Subject})
	if err := msg.Validate(); err != nil {
		d.logg.Warn(logCtx, "notification skipped: "+err.Error())
		d.metrics.Notification("invalid")
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logg.Warn(logCtx, "notification dropped: dispatcher closed")
		d.metrics.Notification("dropped")
		return
	}
	select {
	case d.queue <- job{ctx: context.WithoutCancel(logCtx), msg: msg}:
	default:
		d.logg.Warn(logCtx, "notification dropped: queue full")
		d.metrics.Notification("dropped")
	}
}

// Close stops accepting messages and waits for queued ones to be sent, or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
	defer cancel()
	if err := d.sender.Send(ctx, j.msg); err != nil {
		d.logg.Error(j.ctx, "notification send failed", err)
		d.metrics.Notification("failed")
		return
	}
	d.metrics.Notification("sent")
}
