package transport

import "github.com/Skotchmaster/emart/internal/models"

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AddCartItemRequest defaults a missing quantity to one.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AdminStatusRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

func (r AdminStatusRequest) ToUpdate() models.StatusUpdate {
	var upd models.StatusUpdate
	if r.OrderStatus != nil && *r.OrderStatus != "" {
		s := models.OrderStatus(*r.OrderStatus)
		upd.OrderStatus = &s
	}
	if r.PaymentStatus != nil && *r.PaymentStatus != "" {
		s := models.PaymentStatus(*r.PaymentStatus)
		upd.PaymentStatus = &s
	}
	return upd
}

type CreateProductRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"       validate:"gte=0"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock"       validate:"gte=0"`
	Rating      float64  `json:"rating"      validate:"gte=0,lte=5"`
	Tags        []string `json:"tags"`
	Discount    float64  `json:"discount"    validate:"gte=0,lte=100"`
}

func (r CreateProductRequest) ToModel() models.Product {
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		Category:    r.Category,
		Stock:       r.Stock,
		Rating:      r.Rating,
		Tags:        r.Tags,
		Discount:    r.Discount,
	}
}

type PatchProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"    validate:"omitempty,gte=0"`
	Image       *string   `json:"image"`
	Category    *string   `json:"category"`
	Stock       *int      `json:"stock"    validate:"omitempty,gte=0"`
	Rating      *float64  `json:"rating"   validate:"omitempty,gte=0,lte=5"`
	Tags        *[]string `json:"tags"`
	Discount    *float64  `json:"discount" validate:"omitempty,gte=0,lte=100"`
}

func (r PatchProductRequest) ToPatch() models.ProductPatch {
	return models.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		Category:    r.Category,
		Stock:       r.Stock,
		Rating:      r.Rating,
		Tags:        r.Tags,
		Discount:    r.Discount,
	}
}
