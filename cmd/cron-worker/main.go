package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ramchandran06/E-commerce-backend/internal/cron"
	"github.com/Ramchandran06/E-commerce-backend/internal/payments"
	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db"
	"github.com/Ramchandran06/E-commerce-backend/pkg/instance"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
	"github.com/Ramchandran06/E-commerce-backend/pkg/migrate"
	"github.com/Ramchandran06/E-commerce-backend/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg := logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down")
}

// run owns every connection so they are closed on all exit paths.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeQuietly(ctx, logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer closeQuietly(ctx, logg, "redis", redisClient.Close)

	service, err := buildService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	lockKey := redisClient.LockKey(serviceKind + ":" + envOrLocal(cfg.App.Env))
	lock, err := cron.NewRedisLock(redisClient, lockKey, 0)
	if err != nil {
		return nil, fmt.Errorf("cron lock: %w", err)
	}

	expiry, err := cron.NewPaymentIntentExpiryJob(cron.PaymentIntentExpiryJobParams{
		Logger:  logg,
		Intents: payments.NewRepository(dbClient.DB()),
		TTL:     cfg.Cron.PaymentIntentTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("payment intent expiry job: %w", err)
	}

	registry, err := cron.NewRegistry(expiry)
	if err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
}

func closeQuietly(ctx context.Context, logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(ctx, "error closing "+name, err)
	}
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
