package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Ramchandran06/E-commerce-backend/api/controllers"
	"github.com/Ramchandran06/E-commerce-backend/api/routes"
	"github.com/Ramchandran06/E-commerce-backend/internal/cart"
	"github.com/Ramchandran06/E-commerce-backend/internal/dashboard"
	"github.com/Ramchandran06/E-commerce-backend/internal/inventory"
	"github.com/Ramchandran06/E-commerce-backend/internal/orders"
	"github.com/Ramchandran06/E-commerce-backend/internal/payments"
	"github.com/Ramchandran06/E-commerce-backend/internal/returns"
	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db"
	"github.com/Ramchandran06/E-commerce-backend/pkg/instance"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
	"github.com/Ramchandran06/E-commerce-backend/pkg/migrate"
	"github.com/Ramchandran06/E-commerce-backend/pkg/razorpay"
	"github.com/Ramchandran06/E-commerce-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	notifier, err := newNotifier(context.Background(), cfg, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}
	if notifier.pinger != nil {
		readiness["pubsub"] = notifier.pinger
	}

	gateway, err := razorpay.NewFromConfig(cfg.Razorpay)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	ledger := inventory.NewLedger()
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	cartService, err := cart.NewService(cartRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	builder, err := orders.NewBuilder(ordersRepo, dbClient, cart.NewSnapshotReader(cartRepo), ledger, notifier, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create order builder", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceDeps{
		Repo:      ordersRepo,
		Tx:        dbClient,
		Ledger:    ledger,
		Notifier:  notifier,
		Logger:    logg,
		Metrics:   orderMetrics,
		OrdersURL: cfg.Notifications.FrontendURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(conn),
		Carts:   cart.NewSnapshotReader(cartRepo),
		Gateway: gateway,
		Orders:  builder,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	returnsService, err := returns.NewService(returns.ServiceDeps{
		Repo:     returns.NewRepository(conn),
		Orders:   ordersRepo,
		Tx:       dbClient,
		Ledger:   ledger,
		Refunder: gateway,
		Notifier: notifier,
		Logger:   logg,
		Metrics:  orderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  instance.GetID(),
		"transport": cfg.Notifications.Transport,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Redis:       redisClient,
			Readiness:   readiness,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,
			Checkout:    builder,
			Orders:      ordersService,
			Payments:    paymentsService,
			Returns:     returnsService,
			Cart:        cartService,
			Dashboard:   dashboardService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			notifier.close(ctx, logg)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	notifier.close(ctx, logg)
	logg.Info(ctx, "api server stopped")
}
