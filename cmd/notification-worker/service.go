package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

const heartbeatInterval = time.Minute

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Logger   *logger.Logger
	Redis    pinger
	PubSub   pinger
	Consumer runner
}

type dependency struct {
	name string
	ping pinger
}

// Service refuses to consume until redis and pubsub answer, then drains the
// notification subscription until ctx ends or the consumer fails.
type Service struct {
	logg     *logger.Logger
	deps     []dependency
	consumer runner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("notification consumer is required")
	}
	deps := []dependency{{"redis", params.Redis}, {"pubsub", params.PubSub}}
	for _, d := range deps {
		if d.ping == nil {
			return nil, fmt.Errorf("%s client is required", d.name)
		}
	}
	return &Service{logg: params.Logger, deps: deps, consumer: params.Consumer}, nil
}

func (s *Service) checkDependencies(ctx context.Context) error {
	for _, d := range s.deps {
		if err := d.ping.Ping(ctx); err != nil {
			s.logg.Error(ctx, d.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", d.name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.checkDependencies(ctx); err != nil {
		return err
	}

	started := time.Now()
	done := make(chan error, 1)
	go func() { done <- s.consumer.Run(ctx) }()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(ctx, "notification consumer stopped unexpectedly", err)
			}
			return err
		case <-heartbeat.C:
			s.logg.Info(s.logg.WithField(ctx, "uptime", time.Since(started).Round(time.Second).String()), "worker heartbeat")
		case <-ctx.Done():
			s.logg.Info(ctx, "worker context canceled")
			return ctx.Err()
		}
	}
}
