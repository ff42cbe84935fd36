package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name"          json:"name"`
	Description string             `bson:"description"   json:"description"`
	Price       float64            `bson:"price"         json:"price"`
	Image       string             `bson:"image"         json:"image"`
	Category    string             `bson:"category"      json:"category"`
	Stock       int                `bson:"stock"         json:"stock"`
	Rating      float64            `bson:"rating"        json:"rating"`
	Tags        []string           `bson:"tags"          json:"tags"`
	Discount    float64            `bson:"discount"      json:"discount"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	Category    *string
	Stock       *int
	Rating      *float64
	Tags        *[]string
	Discount    *float64
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Image == nil &&
		p.Category == nil && p.Stock == nil && p.Rating == nil && p.Tags == nil && p.Discount == nil
}

// Apply copies the set fields onto dst.
func (p ProductPatch) Apply(dst *Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Rating != nil {
		dst.Rating = *p.Rating
	}
	if p.Tags != nil {
		dst.Tags = *p.Tags
	}
	if p.Discount != nil {
		dst.Discount = *p.Discount
	}
}

type ProductFilter struct {
	Category string
	Search   string
	Offset   int64
	Limit    int64
}
