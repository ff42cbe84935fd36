package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/util"
)

type fakeIndex struct {
	docs    map[primitive.ObjectID]models.Product
	hits    []primitive.ObjectID
	deleted []primitive.ObjectID
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	if f.err != nil {
		return f.err
	}
	if f.docs == nil {
		f.docs = map[primitive.ObjectID]models.Product{}
	}
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, from, size int) (int64, []primitive.ObjectID, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	end := min(from+size, len(f.hits))
	start := min(from, end)
	return int64(len(f.hits)), f.hits[start:end], nil
}

func seedProducts(t *testing.T, st *memStore, n int) []models.Product {
	t.Helper()
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		p := models.Product{
			Name:      fmt.Sprintf("Item %02d", i),
			Category:  []string{"kitchen", "garden"}[i%2],
			Price:     float64(10 + i),
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, st.CreateProduct(context.Background(), &p))
		out = append(out, p)
	}
	return out
}

func TestCatalog_ListPagination(t *testing.T) {
	st := newMemStore()
	seeded := seedProducts(t, st, 30)
	svc := &CatalogService{Products: st}
	ctx := context.Background()

	page, err := svc.List(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(30), page.Total)
	assert.Equal(t, int64(3), page.Pages)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Products, 12)
	assert.Equal(t, seeded[29].ID, page.Products[0].ID)

	page, err = svc.List(ctx, ProductQuery{Page: 3, Limit: 12})
	require.NoError(t, err)
	assert.Len(t, page.Products, 6)

	page, err = svc.List(ctx, ProductQuery{Category: "garden", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Total)
	for _, p := range page.Products {
		assert.Equal(t, "garden", p.Category)
	}
}

func TestCatalog_CreateValidation(t *testing.T) {
	svc := &CatalogService{Products: newMemStore(), Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	tests := []struct {
		name string
		p    models.Product
	}{
		{"blank name", models.Product{Name: "  ", Price: 1}},
		{"negative price", models.Product{Name: "x", Price: -1}},
		{"negative stock", models.Product{Name: "x", Stock: -1}},
		{"discount over 100", models.Product{Name: "x", Discount: 101}},
		{"rating over 5", models.Product{Name: "x", Rating: 5.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.p)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	created, err := svc.Create(ctx, models.Product{Name: " Kettle ", Price: 25, Stock: 3})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "Kettle", created.Name)
	assert.Equal(t, fixedNow, created.CreatedAt)
}

func TestCatalog_UpdateAndDelete(t *testing.T) {
	st := newMemStore()
	idx := &fakeIndex{}
	ev := &recordingPublisher{}
	svc := &CatalogService{Products: st, Index: idx, Events: ev, Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	p, err := svc.Create(ctx, models.Product{Name: "Kettle", Price: 25})
	require.NoError(t, err)
	assert.Contains(t, idx.docs, p.ID)

	price := 30.0
	updated, err := svc.Update(ctx, p.ID.Hex(), models.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Price)
	assert.Equal(t, "Kettle", updated.Name)
	assert.Equal(t, 30.0, idx.docs[p.ID].Price)

	bad := 150.0
	_, err = svc.Update(ctx, p.ID.Hex(), models.ProductPatch{Discount: &bad})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, p.ID.Hex(), models.ProductPatch{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, primitive.NewObjectID().Hex(), models.ProductPatch{Price: &price})
	require.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.Delete(ctx, p.ID.Hex()))
	assert.Equal(t, []primitive.ObjectID{p.ID}, idx.deleted)
	require.ErrorIs(t, svc.Delete(ctx, p.ID.Hex()), ErrProductNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "zzz"), ErrProductNotFound)

	_, err = svc.Get(ctx, p.ID.Hex())
	require.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, 3, ev.len())
}

func TestCatalog_IndexFailuresDoNotFailWrites(t *testing.T) {
	svc := &CatalogService{Products: newMemStore(), Index: &fakeIndex{err: errors.New("cluster down")}}

	p, err := svc.Create(context.Background(), models.Product{Name: "Kettle", Price: 25})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), p.ID.Hex()))
}

func TestCatalog_Search(t *testing.T) {
	st := newMemStore()
	seeded := seedProducts(t, st, 5)
	ctx := context.Background()

	t.Run("ranked by index", func(t *testing.T) {
		idx := &fakeIndex{hits: []primitive.ObjectID{seeded[3].ID, primitive.NewObjectID(), seeded[1].ID}}
		svc := &CatalogService{Products: st, Index: idx}

		page, err := svc.Search(ctx, "item", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Products, 2)
		assert.Equal(t, seeded[3].ID, page.Products[0].ID)
		assert.Equal(t, seeded[1].ID, page.Products[1].ID)
	})

	t.Run("falls back to store scan", func(t *testing.T) {
		svc := &CatalogService{Products: st}

		page, err := svc.Search(ctx, "item 02", 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Products, 1)
		assert.Equal(t, seeded[2].ID, page.Products[0].ID)
	})

	t.Run("index outage falls back to store scan", func(t *testing.T) {
		svc := &CatalogService{Products: st, Index: &fakeIndex{err: errors.New("connection refused")}}

		page, err := svc.Search(ctx, "item 04", 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Products, 1)
		assert.Equal(t, seeded[4].ID, page.Products[0].ID)
	})

	t.Run("empty query", func(t *testing.T) {
		svc := &CatalogService{Products: st}
		_, err := svc.Search(ctx, "  ", 1, 10)
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestCatalog_ListHugePage(t *testing.T) {
	st := newMemStore()
	seedProducts(t, st, 3)
	svc := &CatalogService{Products: st}

	page, err := svc.List(context.Background(), ProductQuery{Page: util.ParseIntDefault("1537228672809129302", 1), Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, util.MaxPage, page.Page)
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(3), page.Total)
}

func TestCatalog_Seed(t *testing.T) {
	st := newMemStore()
	seedProducts(t, st, 4)
	idx := &fakeIndex{}
	svc := &CatalogService{Products: st, Index: idx, Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	n, err := svc.Seed(ctx, []models.Product{{Name: "A", Price: 1}, {Name: "B", Price: 2}}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := st.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, idx.docs, 2)

	_, err = svc.Seed(ctx, []models.Product{{Name: "", Price: 1}}, false)
	require.ErrorIs(t, err, ErrValidation)
}
