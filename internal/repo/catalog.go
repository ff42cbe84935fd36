package repo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/emart/internal/models"
)

func (r *MongoRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	if prod.ID.IsZero() {
		prod.ID = primitive.NewObjectID()
	}
	if prod.Tags == nil {
		prod.Tags = []string{}
	}
	if _, err := r.products().InsertOne(ctx, prod); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *MongoRepo) InsertProducts(ctx context.Context, prods []models.Product) error {
	if len(prods) == 0 {
		return nil
	}
	docs := make([]interface{}, len(prods))
	for i := range prods {
		if prods[i].ID.IsZero() {
			prods[i].ID = primitive.NewObjectID()
		}
		docs[i] = prods[i]
	}
	if _, err := r.products().InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

func (r *MongoRepo) DeleteAllProducts(ctx context.Context) error {
	_, err := r.products().DeleteMany(ctx, bson.M{})
	return err
}

func (r *MongoRepo) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.products().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *MongoRepo) ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var prods []models.Product
	if err := cur.All(ctx, &prods); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for _, p := range prods {
		out[p.ID] = p
	}
	return out, nil
}

func productFilter(f models.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
		}
	}
	return filter
}

func (r *MongoRepo) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	filter := productFilter(f)

	total, err := r.products().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().SetSort(newestFirst()).SetSkip(f.Offset)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.products().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	items := []models.Product{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return items, total, nil
}

func (r *MongoRepo) CountProducts(ctx context.Context) (int64, error) {
	return r.products().CountDocuments(ctx, bson.M{})
}

func patchSet(p models.ProductPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Tags != nil {
		set["tags"] = *p.Tags
	}
	if p.Discount != nil {
		set["discount"] = *p.Discount
	}
	return set
}

func (r *MongoRepo) UpdateProduct(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, now time.Time) (*models.Product, error) {
	set := patchSet(patch)
	set["updatedAt"] = now

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := r.products().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *MongoRepo) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
