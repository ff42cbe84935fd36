package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/emart/internal/models"
)

const recentOrdersLimit = 10

type AdminService struct {
	Users    UserRepo
	Products ProductRepo
	Orders   OrderRepo
}

type Stats struct {
	TotalOrders   int64               `json:"totalOrders"`
	TotalUsers    int64               `json:"totalUsers"`
	TotalProducts int64               `json:"totalProducts"`
	Revenue       float64             `json:"revenue"`
	RecentOrders  []models.AdminOrder `json:"recentOrders"`
}

// Stats gathers the dashboard rollups concurrently; revenue counts completed payments only.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	var recent []models.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalOrders, err = s.Orders.CountOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalUsers, err = s.Users.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalProducts, err = s.Products.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Revenue, err = s.Orders.Revenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.Orders.ListOrders(gctx, recentOrdersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}

	joined, err := s.withCustomers(ctx, recent)
	if err != nil {
		return nil, err
	}
	st.RecentOrders = joined
	return &st, nil
}

func (s *AdminService) AllOrders(ctx context.Context) ([]models.AdminOrder, error) {
	orders, err := s.Orders.ListOrders(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.withCustomers(ctx, orders)
}

func (s *AdminService) AllProducts(ctx context.Context) ([]models.Product, error) {
	items, _, err := s.Products.ListProducts(ctx, models.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *AdminService) AllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) withCustomers(ctx context.Context, orders []models.Order) ([]models.AdminOrder, error) {
	seen := map[primitive.ObjectID]struct{}{}
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ids = append(ids, o.UserID)
		}
	}

	users, err := s.Users.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	out := make([]models.AdminOrder, 0, len(orders))
	for _, o := range orders {
		row := models.AdminOrder{Order: o}
		if u, ok := users[o.UserID]; ok {
			row.Customer = u.Customer()
		}
		out = append(out, row)
	}
	return out, nil
}
