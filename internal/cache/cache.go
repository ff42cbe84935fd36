package cache

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

// CartCache stores raw cart documents keyed by owner.
type CartCache interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Set(ctx context.Context, userID primitive.ObjectID, cart *models.Cart) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

// Nop is used when Redis is not configured; every read misses.
type Nop struct{}

func (Nop) Get(context.Context, primitive.ObjectID) (*models.Cart, error) { return nil, ErrCacheMiss }

func (Nop) Set(context.Context, primitive.ObjectID, *models.Cart) error { return nil }

func (Nop) Delete(context.Context, primitive.ObjectID) error { return nil }
