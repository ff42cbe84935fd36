package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/emart/internal/models"
)

func (r *MongoRepo) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.carts().FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		return nil, notFound(err)
	}
	return &cart, nil
}

// AddCartItem merges quantity into an existing line or appends a new one, creating the cart on first use.
func (r *MongoRepo) AddCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int, now time.Time) error {
	// two attempts: a concurrent first add can win the upsert and leave us a duplicate key
	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.carts().UpdateOne(ctx,
			bson.M{"userId": userID, "items.productId": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": quantity},
				"$set": bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			return fmt.Errorf("increment cart item: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		item := models.CartItem{ProductID: productID, Quantity: quantity, AddedAt: now}
		_, err = r.carts().UpdateOne(ctx,
			bson.M{"userId": userID, "items.productId": bson.M{"$ne": productID}},
			bson.M{
				"$push":        bson.M{"items": item},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("push cart item: %w", err)
		}
	}
	return fmt.Errorf("add cart item: concurrent update on cart of user %s", userID.Hex())
}

func (r *MongoRepo) SetCartItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int, now time.Time) error {
	res, err := r.carts().UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{"$set": bson.M{"items.$.quantity": quantity, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) RemoveCartItem(ctx context.Context, userID, productID primitive.ObjectID, now time.Time) error {
	res, err := r.carts().UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart empties the items but keeps the document. A missing cart is not an error.
func (r *MongoRepo) ClearCart(ctx context.Context, userID primitive.ObjectID, now time.Time) error {
	_, err := r.carts().UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
