package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Shop holds the storefront counters. A nil *Shop is valid and records nothing.
type Shop struct {
	checkouts     *prometheus.CounterVec
	revenue       prometheus.Counter
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewShop registers the storefront metrics on the provided registerer.
func NewShop(reg prometheus.Registerer) *Shop {
	if reg == nil {
		return &Shop{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emart_checkouts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emart_checkout_amount_total",
		Help: "Sum of order totals materialized at checkout.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emart_order_status_transitions_total",
		Help: "Applied order status changes by field and new value.",
	}, []string{"field", "value"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emart_notifications_total",
		Help: "Notification deliveries by event and result.",
	}, []string{"event", "result"})
	reg.MustRegister(checkouts, revenue, transitions, notifications)
	return &Shop{
		checkouts:     checkouts,
		revenue:       revenue,
		transitions:   transitions,
		notifications: notifications,
	}
}

func (s *Shop) CheckoutSucceeded(total float64) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues("success").Inc()
	s.revenue.Add(total)
}

func (s *Shop) CheckoutFailed(reason string) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (s *Shop) StatusTransition(field, value string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(field), normalizeLabel(value)).Inc()
}

func (s *Shop) Notification(event, result string) {
	if s == nil || s.notifications == nil {
		return
	}
	s.notifications.WithLabelValues(normalizeLabel(event), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
