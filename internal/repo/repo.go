package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	cartsCollection    = "carts"
	ordersCollection   = "orders"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type MongoRepo struct {
	DB *mongo.Database
	// Transactions enables multi-document transactions; requires a replica set.
	Transactions bool
}

func (r *MongoRepo) users() *mongo.Collection    { return r.DB.Collection(usersCollection) }
func (r *MongoRepo) products() *mongo.Collection { return r.DB.Collection(productsCollection) }
func (r *MongoRepo) carts() *mongo.Collection    { return r.DB.Collection(cartsCollection) }
func (r *MongoRepo) orders() *mongo.Collection   { return r.DB.Collection(ordersCollection) }

func (r *MongoRepo) Transactional() bool {
	return r.Transactions
}

// WithTransaction runs fn inside a session transaction when enabled, otherwise calls it directly.
func (r *MongoRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.Transactions {
		return fn(ctx)
	}

	sess, err := r.DB.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection][]mongo.IndexModel{
		r.users(): {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		r.products(): {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		r.carts(): {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		r.orders(): {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentStatus", Value: 1}}},
		},
	}

	for coll, idx := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
