package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity"  json:"quantity"`
	AddedAt   time.Time          `bson:"addedAt"   json:"addedAt"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId"        json:"userId"`
	Items     []CartItem         `bson:"items"         json:"items"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

type CartLine struct {
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// CartView is the cart with products resolved at current catalog prices.
type CartView struct {
	UserID primitive.ObjectID `json:"userId"`
	Items  []CartLine         `json:"items"`
	Total  float64            `json:"total"`
}
