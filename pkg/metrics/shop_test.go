package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestShop_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewShop(reg)

	m.CheckoutSucceeded(230)
	m.CheckoutSucceeded(20)
	m.CheckoutFailed("empty_cart")
	m.StatusTransition("orderStatus", "shipped")
	m.Notification("order_confirmation", "sent")
	m.Notification("", "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("empty_cart")))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.revenue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("orderStatus", "shipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("unknown", "failed")))
}

func TestShop_NilSafe(t *testing.T) {
	var m *Shop
	assert.NotPanics(t, func() {
		m.CheckoutSucceeded(1)
		m.CheckoutFailed("x")
		m.StatusTransition("a", "b")
		m.Notification("a", "b")
	})

	empty := NewShop(nil)
	assert.NotPanics(t, func() { empty.CheckoutSucceeded(1) })
}
