package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/pkg/logging"
	"github.com/Skotchmaster/emart/pkg/mykafka"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserAccess(ctx context.Context, id primitive.ObjectID, role, passwordHash string) error
}

type ProductRepo interface {
	CreateProduct(ctx context.Context, prod *models.Product) error
	InsertProducts(ctx context.Context, prods []models.Product) error
	DeleteAllProducts(ctx context.Context) error
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	CountProducts(ctx context.Context) (int64, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, now time.Time) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

type CartRepo interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	AddCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int, now time.Time) error
	SetCartItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int, now time.Time) error
	RemoveCartItem(ctx context.Context, userID, productID primitive.ObjectID, now time.Time) error
	ClearCart(ctx context.Context, userID primitive.ObjectID, now time.Time) error
}

// CartInvalidator drops cached cart state after a write that bypassed the cart service.
type CartInvalidator interface {
	Invalidate(ctx context.Context, userID primitive.ObjectID)
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	OrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListOrders(ctx context.Context, limit int64) ([]models.Order, error)
	CountOrders(ctx context.Context) (int64, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, upd models.StatusUpdate, now time.Time) (*models.Order, error)
	Revenue(ctx context.Context) (float64, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, query string, from, size int) (int64, []primitive.ObjectID, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

var (
	_ UserRepo    = (*repo.MongoRepo)(nil)
	_ ProductRepo = (*repo.MongoRepo)(nil)
	_ CartRepo    = (*repo.MongoRepo)(nil)
	_ OrderRepo   = (*repo.MongoRepo)(nil)
	_ Transactor  = (*repo.MongoRepo)(nil)

	_ EventPublisher = (*mykafka.Producer)(nil)
)

// Identity is the authenticated caller as resolved by the auth middleware.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

func (i Identity) owns(o *models.Order) bool {
	uid, ok := parseID(i.UserID)
	return ok && o.OwnedBy(uid)
}

func parseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil || id.IsZero() {
		return primitive.NilObjectID, false
	}
	return id, true
}

func nowFunc(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now().UTC()
}

const publishTimeout = 5 * time.Second

// publish is fire-and-forget from the caller's point of view; failures are logged.
func publish(ctx context.Context, p EventPublisher, topic, key, eventType string, payload any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pctx, topic, key, mykafka.NewEvent(eventType, payload)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", eventType, "error", err)
	}
}
