package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/emart/internal/models"
)

func (r *MongoRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.orders().InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *MongoRepo) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := r.orders().FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *MongoRepo) findOrders(ctx context.Context, filter bson.M, limit int64) ([]models.Order, error) {
	opts := options.Find().SetSort(newestFirst())
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.orders().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoRepo) OrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.findOrders(ctx, bson.M{"userId": userID}, 0)
}

// ListOrders returns the newest orders first; limit 0 means all.
func (r *MongoRepo) ListOrders(ctx context.Context, limit int64) ([]models.Order, error) {
	return r.findOrders(ctx, bson.M{}, limit)
}

func (r *MongoRepo) CountOrders(ctx context.Context) (int64, error) {
	return r.orders().CountDocuments(ctx, bson.M{})
}

// UpdateOrderStatus applies the update atomically and returns the order as it was before.
func (r *MongoRepo) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, upd models.StatusUpdate, now time.Time) (*models.Order, error) {
	set := bson.M{"updatedAt": now}
	if upd.OrderStatus != nil {
		set["orderStatus"] = *upd.OrderStatus
	}
	if upd.PaymentStatus != nil {
		set["paymentStatus"] = *upd.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before models.Order
	err := r.orders().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&before)
	if err != nil {
		return nil, notFound(err)
	}
	return &before, nil
}

// Revenue sums totalAmount over orders whose payment completed.
func (r *MongoRepo) Revenue(ctx context.Context) (float64, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"paymentStatus": models.PaymentCompleted}},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}},
	}
	cur, err := r.orders().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate revenue: %w", err)
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
