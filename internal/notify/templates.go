package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var orderStatusMessages = map[string]string{
	"pending":    "Your order has been received and is pending processing.",
	"processing": "Your order is now being processed.",
	"shipped":    "Good news! Your order has been shipped.",
	"delivered":  "Your order has been delivered. Enjoy!",
	"cancelled":  "Your order has been cancelled.",
}

var paymentStatusMessages = map[string]string{
	"pending":   "Your payment is pending.",
	"completed": "Your payment has been received. Thank you!",
	"failed":    "Your payment could not be processed. Please try again or contact support.",
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"mul":   func(p float64, q int) float64 { return p * float64(q) },
}

var bodies = map[Event]*template.Template{
	EventOrderConfirmation: template.Must(template.New("confirmation").Funcs(funcs).Parse(`
<h2>Thank you for your order, {{.CustomerName}}!</h2>
<p>Order #{{.ShortID}} has been placed.</p>
<table>
{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{money (mul .Price .Quantity)}}</td></tr>
{{end}}</table>
<p><strong>Total: {{money .Total}}</strong></p>
<p>Shipping to: {{.Address}}</p>`)),

	EventAdminNewOrder: template.Must(template.New("admin").Funcs(funcs).Parse(`
<h2>New order #{{.ShortID}}</h2>
<p>Customer: {{.CustomerName}} ({{.CustomerEmail}})</p>
<ul>
{{range .Items}}<li>{{.Name}} x{{.Quantity}} @ {{money .Price}}</li>
{{end}}</ul>
<p><strong>Total: {{money .Total}}</strong></p>
<p>Ship to: {{.Address}}</p>`)),

	EventOrderStatusUpdate: template.Must(template.New("status").Funcs(funcs).Parse(`
<h2>Order #{{.ShortID}} update</h2>
<p>Hello {{.CustomerName}},</p>
<p>{{.Message}}</p>
<p>Current status: <strong>{{.Status}}</strong></p>`)),

	EventPaymentStatusUpdate: template.Must(template.New("payment").Funcs(funcs).Parse(`
<h2>Payment update for order #{{.ShortID}}</h2>
<p>Hello {{.CustomerName}},</p>
<p>{{.Message}}</p>
<p>Payment status: <strong>{{.Status}}</strong></p>`)),

	EventWelcome: template.Must(template.New("welcome").Parse(`
<h2>Welcome to E-Mart, {{.Name}}!</h2>
<p>Your account is ready. Happy shopping!</p>`)),
}

type statusView struct {
	OrderPayload
	Message string
}

// Render builds the subject and HTML body for an event.
func Render(event Event, payload any) (subject, body string, err error) {
	tpl, ok := bodies[event]
	if !ok {
		return "", "", fmt.Errorf("unknown event %q", event)
	}

	var data any
	switch event {
	case EventWelcome:
		p, ok := payload.(WelcomePayload)
		if !ok {
			return "", "", fmt.Errorf("event %s: unexpected payload %T", event, payload)
		}
		subject, data = "Welcome to E-Mart", p
	default:
		p, ok := payload.(OrderPayload)
		if !ok {
			return "", "", fmt.Errorf("event %s: unexpected payload %T", event, payload)
		}
		switch event {
		case EventOrderConfirmation:
			subject, data = "Order Confirmation #"+p.ShortID, p
		case EventAdminNewOrder:
			subject, data = "New Order #"+p.ShortID, p
		case EventOrderStatusUpdate:
			subject = "Order Status Update #" + p.ShortID
			data = statusView{OrderPayload: p, Message: messageFor(orderStatusMessages, p.Status)}
		case EventPaymentStatusUpdate:
			subject = "Payment Status Update #" + p.ShortID
			data = statusView{OrderPayload: p, Message: messageFor(paymentStatusMessages, p.Status)}
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", event, err)
	}
	return subject, buf.String(), nil
}

func messageFor(table map[string]string, status string) string {
	if m, ok := table[status]; ok {
		return m
	}
	return "Your order status changed to " + status + "."
}
