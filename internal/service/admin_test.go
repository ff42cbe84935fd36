package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
)

func TestAdminStats(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	jane := models.User{Name: "Jane", Email: "jane@example.com", Role: "user"}
	require.NoError(t, st.CreateUser(ctx, &jane))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{Name: "Lamp", Price: 10}))

	for i := 0; i < 12; i++ {
		o := models.Order{
			UserID:        jane.ID,
			TotalAmount:   10,
			OrderStatus:   models.OrderPending,
			PaymentStatus: models.PaymentPending,
			CreatedAt:     fixedNow.Add(time.Duration(i) * time.Minute),
		}
		if i%3 == 0 {
			o.PaymentStatus = models.PaymentCompleted
		}
		require.NoError(t, st.CreateOrder(ctx, &o))
	}
	orphan := models.Order{UserID: primitive.NewObjectID(), TotalAmount: 99, PaymentStatus: models.PaymentFailed, CreatedAt: fixedNow.Add(time.Hour)}
	require.NoError(t, st.CreateOrder(ctx, &orphan))

	svc := &AdminService{Users: st, Products: st, Orders: st}
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(13), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, 40.0, stats.Revenue)
	require.Len(t, stats.RecentOrders, 10)

	assert.Equal(t, orphan.ID, stats.RecentOrders[0].ID)
	assert.Nil(t, stats.RecentOrders[0].Customer)
	require.NotNil(t, stats.RecentOrders[1].Customer)
	assert.Equal(t, "jane@example.com", stats.RecentOrders[1].Customer.Email)
}

func TestAdminStats_EmptyStore(t *testing.T) {
	st := newMemStore()
	svc := &AdminService{Users: st, Products: st, Orders: st}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.Revenue)
	assert.Empty(t, stats.RecentOrders)
}

func TestAdminListings(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	jane := models.User{Name: "Jane", Email: "jane@example.com", CreatedAt: fixedNow}
	bob := models.User{Name: "Bob", Email: "bob@example.com", CreatedAt: fixedNow.Add(time.Minute)}
	require.NoError(t, st.CreateUser(ctx, &jane))
	require.NoError(t, st.CreateUser(ctx, &bob))
	require.NoError(t, st.CreateOrder(ctx, &models.Order{UserID: jane.ID, CreatedAt: fixedNow}))
	require.NoError(t, st.CreateOrder(ctx, &models.Order{UserID: bob.ID, CreatedAt: fixedNow.Add(time.Minute)}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{Name: "Lamp"}))

	svc := &AdminService{Users: st, Products: st, Orders: st}

	orders, err := svc.AllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Bob", orders[0].Customer.Name)
	assert.Equal(t, "Jane", orders[1].Customer.Name)

	users, err := svc.AllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, bob.ID, users[0].ID)

	products, err := svc.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
