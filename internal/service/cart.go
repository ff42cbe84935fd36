package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/emart/internal/cache"
	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/pkg/logging"
)

type CartService struct {
	Carts    CartRepo
	Products ProductRepo
	Cache    cache.CartCache
	Now      func() time.Time

	sfg singleflight.Group
	// epochs move on every mutation, striped by user id. A read that saw an
	// older epoch must not leave its cart in the cache.
	epochs [64]atomic.Uint64
}

func (s *CartService) epoch(uid primitive.ObjectID) *atomic.Uint64 {
	return &s.epochs[int(uid[len(uid)-1])%len(s.epochs)]
}

func (s *CartService) cartCache() cache.CartCache {
	if s.Cache == nil {
		return cache.Nop{}
	}
	return s.Cache
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	uid, ok := parseID(userID)
	if !ok {
		return nil, fmt.Errorf("invalid user id: %w", ErrUnauthorized)
	}
	cart, err := s.loadCart(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, uid, cart)
}

// loadCart reads through the cache; concurrent misses for one user share a single store read.
func (s *CartService) loadCart(ctx context.Context, uid primitive.ObjectID) (*models.Cart, error) {
	v, err, _ := s.sfg.Do(uid.Hex(), func() (interface{}, error) {
		cart, err := s.cartCache().Get(ctx, uid)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logging.FromContext(ctx).Warn("cart_cache_get_error", "user_id", uid.Hex(), "error", err)
		}

		seen := s.epoch(uid).Load()
		cart, err = s.storeCart(ctx, uid)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, uid, seen, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

func (s *CartService) storeCart(ctx context.Context, uid primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.Carts.GetCart(ctx, uid)
	if errors.Is(err, repo.ErrNotFound) {
		return &models.Cart{UserID: uid}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// fill caches a cart read while the user's epoch was seen. If a mutation
// moved the epoch meanwhile, the entry is dropped again.
func (s *CartService) fill(ctx context.Context, uid primitive.ObjectID, seen uint64, cart *models.Cart) {
	l := logging.FromContext(ctx)
	ep := s.epoch(uid)
	if ep.Load() != seen {
		return
	}
	if err := s.cartCache().Set(ctx, uid, cart); err != nil {
		l.Warn("cart_cache_set_error", "user_id", uid.Hex(), "error", err)
		return
	}
	if ep.Load() != seen {
		s.drop(ctx, uid)
	}
}

// view resolves products at current prices. Lines whose product was deleted are left out.
func (s *CartService) view(ctx context.Context, uid primitive.ObjectID, cart *models.Cart) (*models.CartView, error) {
	out := &models.CartView{UserID: uid, Items: []models.CartLine{}}
	if cart.Empty() {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	total := decimal.Zero
	for _, it := range cart.Items {
		p, ok := products[it.ProductID]
		if !ok {
			logging.FromContext(ctx).Warn("cart_item_product_missing", "user_id", uid.Hex(), "product_id", it.ProductID.Hex())
			continue
		}
		out.Items = append(out.Items, models.CartLine{Product: p, Quantity: it.Quantity, AddedAt: it.AddedAt})
		total = total.Add(p.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	out.Total = total.Round(2).InexactFloat64()
	return out, nil
}

func (s *CartService) parseLine(userID, productID string, quantity int, checkQty bool) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, ok := parseID(userID)
	if !ok {
		return uid, uid, fmt.Errorf("invalid user id: %w", ErrUnauthorized)
	}
	pid, ok := parseID(productID)
	if !ok {
		return uid, pid, fmt.Errorf("invalid product id: %w", ErrValidation)
	}
	if checkQty && quantity < 1 {
		return uid, pid, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	return uid, pid, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	uid, pid, err := s.parseLine(userID, productID, quantity, true)
	if err != nil {
		return nil, err
	}

	if _, err := s.Products.GetProduct(ctx, pid); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	if err := s.Carts.AddCartItem(ctx, uid, pid, quantity, nowFunc(s.Now)); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.afterMutation(ctx, uid)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	uid, pid, err := s.parseLine(userID, productID, quantity, true)
	if err != nil {
		return nil, err
	}

	if err := s.Carts.SetCartItemQuantity(ctx, uid, pid, quantity, nowFunc(s.Now)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.afterMutation(ctx, uid)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, error) {
	uid, pid, err := s.parseLine(userID, productID, 0, false)
	if err != nil {
		return nil, err
	}

	if err := s.Carts.RemoveCartItem(ctx, uid, pid, nowFunc(s.Now)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return s.afterMutation(ctx, uid)
}

func (s *CartService) Clear(ctx context.Context, userID string) (*models.CartView, error) {
	uid, ok := parseID(userID)
	if !ok {
		return nil, fmt.Errorf("invalid user id: %w", ErrUnauthorized)
	}
	if err := s.Carts.ClearCart(ctx, uid, nowFunc(s.Now)); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return s.afterMutation(ctx, uid)
}

func (s *CartService) afterMutation(ctx context.Context, uid primitive.ObjectID) (*models.CartView, error) {
	seen := s.invalidate(ctx, uid)
	cart, err := s.storeCart(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, uid, seen, cart)
	return s.view(ctx, uid, cart)
}

// Invalidate drops the cached cart of a user whose cart was written outside CartService.
func (s *CartService) Invalidate(ctx context.Context, userID primitive.ObjectID) {
	s.invalidate(ctx, userID)
}

// invalidate must run after the store write. It returns the new epoch.
func (s *CartService) invalidate(ctx context.Context, uid primitive.ObjectID) uint64 {
	seen := s.epoch(uid).Add(1)
	s.sfg.Forget(uid.Hex())
	s.drop(ctx, uid)
	return seen
}

func (s *CartService) drop(ctx context.Context, uid primitive.ObjectID) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cartCache().Delete(cctx, uid); err != nil {
		logging.FromContext(ctx).Warn("cart_cache_invalidate_error", "user_id", uid.Hex(), "error", err)
	}
}
