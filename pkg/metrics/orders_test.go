package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func TestOrderMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.OrderPlaced("COD")
	m.OrderPlaced("COD")
	m.CheckoutFailed("INSUFFICIENT_STOCK")
	m.StatusChanged("Processing", "Shipped")
	m.ReturnResolved("Approved")
	m.Refund("failed")
	m.Notification("dropped")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	cases := []struct {
		name, label, value string
		want               float64
	}{
		{"shop_orders_placed_total", "payment_method", "COD", 2},
		{"shop_checkout_failures_total", "code", "INSUFFICIENT_STOCK", 1},
		{"shop_order_status_transitions_total", "to", "Shipped", 1},
		{"shop_returns_resolved_total", "decision", "Approved", 1},
		{"shop_refunds_total", "outcome", "failed", 1},
		{"shop_notifications_total", "outcome", "dropped", 1},
	}
	for _, tc := range cases {
		got, err := fetchCounterValue(mfs, tc.name, tc.label, tc.value)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s expected %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestOrderMetricsNilSafe(t *testing.T) {
	var m *OrderMetrics
	m.OrderPlaced("Online")
	m.Notification("sent")
	NewOrderMetrics(nil).Refund("succeeded")
}

func TestHTTPMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got, err := fetchCounterValue(mfs, "shop_http_requests_total", "route", "/orders/{orderId}")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected one request, got %v", got)
	}
	got, err = fetchCounterValue(mfs, "shop_http_requests_total", "status", "418")
	if err != nil || got != 1 {
		t.Fatalf("expected status label 418, got %v err=%v", got, err)
	}
}

func TestHandlerServesGatheredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewOrderMetrics(reg).OrderPlaced("Online")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `shop_orders_placed_total{payment_method="Online"} 1`) {
		t.Fatalf("metrics body missing counter: %s", rec.Body.String())
	}
}
