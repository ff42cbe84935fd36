package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

type ShippingAddress struct {
	Street  string `bson:"street"  json:"street"  validate:"required"`
	City    string `bson:"city"    json:"city"    validate:"required"`
	State   string `bson:"state"   json:"state"   validate:"required"`
	ZipCode string `bson:"zipCode" json:"zipCode" validate:"required"`
	Country string `bson:"country" json:"country" validate:"required"`
}

// Normalize trims every field and reports the first empty one.
func (a *ShippingAddress) Normalize() error {
	fields := []struct {
		name string
		val  *string
	}{
		{"street", &a.Street},
		{"city", &a.City},
		{"state", &a.State},
		{"zipCode", &a.ZipCode},
		{"country", &a.Country},
	}
	for _, f := range fields {
		*f.val = strings.TrimSpace(*f.val)
		if *f.val == "" {
			return fmt.Errorf("shippingAddress.%s is required", f.name)
		}
	}
	return nil
}

type OrderItem struct {
	ProductID       primitive.ObjectID `bson:"productId"       json:"productId"`
	Name            string             `bson:"name"            json:"name"`
	Quantity        int                `bson:"quantity"        json:"quantity"`
	PriceAtPurchase float64            `bson:"priceAtPurchase" json:"priceAtPurchase"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"   json:"_id"`
	UserID          primitive.ObjectID `bson:"userId"          json:"userId"`
	Items           []OrderItem        `bson:"items"           json:"items"`
	TotalAmount     float64            `bson:"totalAmount"     json:"totalAmount"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	OrderStatus     OrderStatus        `bson:"orderStatus"     json:"orderStatus"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus"   json:"paymentStatus"`
	CreatedAt       time.Time          `bson:"createdAt"       json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"       json:"updatedAt"`
}

// ShortID is the suffix customers see in email subjects.
func (o *Order) ShortID() string {
	hex := o.ID.Hex()
	return strings.ToUpper(hex[len(hex)-6:])
}

func (o *Order) OwnedBy(userID primitive.ObjectID) bool {
	return o.UserID == userID
}

// StatusUpdate names the lifecycle fields to change; nil means leave as is.
type StatusUpdate struct {
	OrderStatus   *OrderStatus
	PaymentStatus *PaymentStatus
}

func (u StatusUpdate) Empty() bool {
	return u.OrderStatus == nil && u.PaymentStatus == nil
}

func (u StatusUpdate) Validate() error {
	if u.Empty() {
		return fmt.Errorf("orderStatus or paymentStatus is required")
	}
	if u.OrderStatus != nil && !u.OrderStatus.Valid() {
		return fmt.Errorf("invalid orderStatus %q", *u.OrderStatus)
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return fmt.Errorf("invalid paymentStatus %q", *u.PaymentStatus)
	}
	return nil
}

// Apply returns a copy of o with the update applied.
func (u StatusUpdate) Apply(o Order, now time.Time) Order {
	if u.OrderStatus != nil {
		o.OrderStatus = *u.OrderStatus
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	o.UpdatedAt = now
	return o
}

// AdminOrder is an order joined with its owner for admin listings.
type AdminOrder struct {
	Order
	Customer *Customer `json:"customer,omitempty"`
}
