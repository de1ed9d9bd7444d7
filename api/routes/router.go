package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ramchandran06/E-commerce-backend/api/controllers"
	cartcontrollers "github.com/Ramchandran06/E-commerce-backend/api/controllers/cart"
	dashboardcontrollers "github.com/Ramchandran06/E-commerce-backend/api/controllers/dashboard"
	ordercontrollers "github.com/Ramchandran06/E-commerce-backend/api/controllers/orders"
	returncontrollers "github.com/Ramchandran06/E-commerce-backend/api/controllers/returns"
	"github.com/Ramchandran06/E-commerce-backend/api/middleware"
	"github.com/Ramchandran06/E-commerce-backend/internal/cart"
	"github.com/Ramchandran06/E-commerce-backend/internal/dashboard"
	"github.com/Ramchandran06/E-commerce-backend/internal/orders"
	"github.com/Ramchandran06/E-commerce-backend/internal/payments"
	"github.com/Ramchandran06/E-commerce-backend/internal/returns"
	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/metrics"
	pkgredis "github.com/Ramchandran06/E-commerce-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer uses.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps carries everything the router hands to middleware and controllers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       RedisStore
	Readiness   map[string]controllers.Pinger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Checkout  ordercontrollers.OrderPlacer
	Orders    orders.Service
	Payments  payments.Service
	Returns   returns.Service
	Cart      cart.Service
	Dashboard dashboard.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		d.HTTPMetrics.Middleware,
		middleware.CORS(cfg.App.CORSOrigins),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", cfg.App.CheckoutRateWindow, cfg.App.CheckoutRateLimit)
	limiter := middleware.RateLimit(checkoutPolicy, d.Redis, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Readiness))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(limiter).Post("/", ordercontrollers.Checkout(d.Checkout, logg))
			r.Get("/", ordercontrollers.List(d.Orders, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(d.Orders, logg))

			r.Route("/razorpay", func(r chi.Router) {
				r.Use(limiter)
				r.Post("/create-order", ordercontrollers.CreatePaymentIntent(d.Payments, logg))
				r.Post("/verify-payment", ordercontrollers.VerifyPayment(d.Payments, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Get("/all", ordercontrollers.AdminList(d.Orders, logg))
				r.Get("/sales-summary", dashboardcontrollers.SalesSummary(d.Dashboard, logg))
				r.Put("/{orderId}/status", ordercontrollers.AdminUpdateStatus(d.Orders, logg))
			})
		})

		r.Route("/returns", func(r chi.Router) {
			r.Post("/request", returncontrollers.Request(d.Returns, logg))
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Get("/all", returncontrollers.AdminList(d.Returns, logg))
				r.Put("/{returnId}/status", returncontrollers.AdminResolve(d.Returns, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Get(d.Cart, logg))
			r.Post("/add", cartcontrollers.Add(d.Cart, logg))
			r.Put("/update", cartcontrollers.Update(d.Cart, logg))
			r.Delete("/remove/{productId}", cartcontrollers.Remove(d.Cart, logg))
			r.Delete("/clear", cartcontrollers.Clear(d.Cart, logg))
		})

		r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).
			Get("/dashboard/stats", dashboardcontrollers.Stats(d.Dashboard, logg))
	})

	return r
}
