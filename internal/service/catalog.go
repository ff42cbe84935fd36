package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/internal/util"
	"github.com/Skotchmaster/emart/pkg/logging"
	"github.com/Skotchmaster/emart/pkg/mykafka"
)

type CatalogService struct {
	Products ProductRepo
	// Index is optional; without it search falls back to a store scan.
	Index  ProductIndex
	Events EventPublisher
	Now    func() time.Time
}

type ProductQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Pages    int64            `json:"pages"`
	Page     int              `json:"page"`
}

func (s *CatalogService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, limit := util.Normalize(q.Page, q.Limit)
	offset, _ := util.Calculate(page, limit)

	items, total, err := s.Products.ListProducts(ctx, models.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Offset:   int64(offset),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductPage{Products: items, Total: total, Pages: util.Pages(total, limit), Page: page}, nil
}

// Search ranks with the full-text index and hydrates hits from the store.
func (s *CatalogService) Search(ctx context.Context, query string, page, limit int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", ErrValidation)
	}
	if s.Index == nil {
		return s.List(ctx, ProductQuery{Search: query, Page: page, Limit: limit})
	}

	page, limit = util.Normalize(page, limit)
	offset, _ := util.Calculate(page, limit)

	total, ids, err := s.Index.Search(ctx, query, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("product_search_fallback", "error", err)
		return s.List(ctx, ProductQuery{Search: query, Page: page, Limit: limit})
	}
	byID, err := s.Products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return &ProductPage{Products: items, Total: total, Pages: util.Pages(total, limit), Page: page}, nil
}

func (s *CatalogService) Get(ctx context.Context, productID string) (*models.Product, error) {
	id, ok := parseID(productID)
	if !ok {
		return nil, ErrProductNotFound
	}
	p, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return fmt.Errorf("name is required: %w", ErrValidation)
	case p.Price < 0:
		return fmt.Errorf("price must be >= 0: %w", ErrValidation)
	case p.Stock < 0:
		return fmt.Errorf("stock must be >= 0: %w", ErrValidation)
	case p.Discount < 0 || p.Discount > 100:
		return fmt.Errorf("discount must be between 0 and 100: %w", ErrValidation)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("rating must be between 0 and 5: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	now := nowFunc(s.Now)
	p.ID = primitive.NilObjectID
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.Products.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.reindex(ctx, &p)
	publish(ctx, s.Events, mykafka.TopicProducts, p.ID.Hex(), "product_created", p)
	return &p, nil
}

func (s *CatalogService) Update(ctx context.Context, productID string, patch models.ProductPatch) (*models.Product, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("nothing to update: %w", ErrValidation)
	}
	current, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	// validate the merged result so partial updates cannot break invariants
	merged := *current
	patch.Apply(&merged)
	if err := validateProduct(&merged); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		patch.Name = &merged.Name
	}

	updated, err := s.Products.UpdateProduct(ctx, current.ID, patch, nowFunc(s.Now))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.reindex(ctx, updated)
	publish(ctx, s.Events, mykafka.TopicProducts, updated.ID.Hex(), "product_updated", updated)
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, productID string) error {
	id, ok := parseID(productID)
	if !ok {
		return ErrProductNotFound
	}
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_error", "product_id", id.Hex(), "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, id.Hex(), "product_deleted", map[string]string{"id": id.Hex()})
	return nil
}

// Seed loads a batch of products, optionally wiping the collection first.
func (s *CatalogService) Seed(ctx context.Context, products []models.Product, replace bool) (int, error) {
	now := nowFunc(s.Now)
	for i := range products {
		if err := validateProduct(&products[i]); err != nil {
			return 0, fmt.Errorf("product %d: %w", i, err)
		}
		products[i].CreatedAt, products[i].UpdatedAt = now, now
	}

	if replace {
		if err := s.Products.DeleteAllProducts(ctx); err != nil {
			return 0, fmt.Errorf("clear products: %w", err)
		}
	}
	if err := s.Products.InsertProducts(ctx, products); err != nil {
		return 0, err
	}
	for i := range products {
		s.reindex(ctx, &products[i])
	}
	return len(products), nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID.Hex(), "error", err)
	}
}
