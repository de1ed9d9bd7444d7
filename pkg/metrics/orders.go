package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle events.
type OrderMetrics struct {
	placed        *prometheus.CounterVec
	checkoutFails *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	returns       *prometheus.CounterVec
	refunds       *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders committed, by payment method.",
		}, []string{"payment_method"}),
		checkoutFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_failures_total",
			Help:      "Checkout attempts rejected, by error code.",
		}, []string{"code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status changes.",
		}, []string{"from", "to"}),
		returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_resolved_total",
			Help:      "Return requests resolved by an admin, by decision.",
		}, []string{"decision"}),
		refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Gateway refunds attempted, by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Customer notifications, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.placed, m.checkoutFails, m.transitions, m.returns, m.refunds, m.notifications)
	return m
}

func (m *OrderMetrics) OrderPlaced(paymentMethod string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

func (m *OrderMetrics) CheckoutFailed(code string) {
	if m == nil || m.checkoutFails == nil {
		return
	}
	m.checkoutFails.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) StatusChanged(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) ReturnResolved(decision string) {
	if m == nil || m.returns == nil {
		return
	}
	m.returns.WithLabelValues(normalizeLabel(decision)).Inc()
}

// Refund outcomes: "succeeded" or "failed".
func (m *OrderMetrics) Refund(outcome string) {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// Notification outcomes: "sent", "failed", "dropped", "duplicate".
func (m *OrderMetrics) Notification(outcome string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}
