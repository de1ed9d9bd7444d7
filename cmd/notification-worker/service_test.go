package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubRunner struct {
	called bool
	err    error
}

func (s *stubRunner) Run(context.Context) error {
	s.called = true
	return s.err
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard})
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: quietLogger(), Redis: stubPinger{}, PubSub: stubPinger{}}); err == nil {
		t.Fatal("expected missing consumer to fail")
	}
}

func TestRunStopsWhenDependencyIsDown(t *testing.T) {
	consumer := &stubRunner{}
	svc, err := NewService(ServiceParams{
		Logger:   quietLogger(),
		Redis:    stubPinger{err: errors.New("connection refused")},
		PubSub:   stubPinger{},
		Consumer: consumer,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected redis ping failure")
	}
	if consumer.called {
		t.Fatal("consumer must not start before dependencies are ready")
	}
}

func TestRunReturnsConsumerError(t *testing.T) {
	boom := errors.New("subscription deleted")
	consumer := &stubRunner{err: boom}
	svc, err := NewService(ServiceParams{
		Logger:   quietLogger(),
		Redis:    stubPinger{},
		PubSub:   stubPinger{},
		Consumer: consumer,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected consumer error, got %v", err)
	}
}

func TestNewServiceNamesMissingPinger(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: quietLogger(), Redis: stubPinger{}, Consumer: &stubRunner{}})
	if err == nil || err.Error() != "pubsub client is required" {
		t.Fatalf("expected pubsub requirement, got %v", err)
	}
}
