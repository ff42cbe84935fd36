// Package notify delivers transactional email on a best-effort basis.
// Callers get a Result back and are never handed an error.
package notify

import "context"

type Event string

const (
	EventOrderConfirmation   Event = "order_confirmation"
	EventAdminNewOrder       Event = "admin_new_order"
	EventOrderStatusUpdate   Event = "order_status_update"
	EventPaymentStatusUpdate Event = "payment_status_update"
	EventWelcome             Event = "welcome"
)

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event, recipient string, payload any) Result
}

type OrderLine struct {
	Name     string
	Quantity int
	Price    float64
}

// OrderPayload feeds every order related template.
type OrderPayload struct {
	OrderID       string
	ShortID       string
	CustomerName  string
	CustomerEmail string
	Items         []OrderLine
	Total         float64
	Address       string
	Status        string
}

type WelcomePayload struct {
	Name string
}
