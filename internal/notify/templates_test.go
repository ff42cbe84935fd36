package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	p := orderPayload()
	tests := []struct {
		name        string
		event       Event
		payload     any
		subject     string
		bodyContain string
	}{
		{name: "confirmation", event: EventOrderConfirmation, payload: p, subject: "Order Confirmation #F6A7B8", bodyContain: "Phone"},
		{name: "admin", event: EventAdminNewOrder, payload: p, subject: "New Order #F6A7B8", bodyContain: "$90.00"},
		{name: "status", event: EventOrderStatusUpdate, payload: p, subject: "Order Status Update #F6A7B8", bodyContain: "has been shipped"},
		{name: "payment", event: EventPaymentStatusUpdate, payload: OrderPayload{ShortID: "ABCDEF", Status: "failed"}, subject: "Payment Status Update #ABCDEF", bodyContain: "could not be processed"},
		{name: "welcome", event: EventWelcome, payload: WelcomePayload{Name: "Ann"}, subject: "Welcome to E-Mart", bodyContain: "Ann"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			subject, body, err := Render(tt.event, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
			assert.Contains(t, body, tt.bodyContain)
		})
	}
}

func TestRender_EscapesHTML(t *testing.T) {
	t.Parallel()

	_, body, err := Render(EventWelcome, WelcomePayload{Name: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
