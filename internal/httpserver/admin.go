package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/service"
	"github.com/Skotchmaster/emart/internal/transport"
	"github.com/Skotchmaster/emart/pkg/logging"
)

type AdminAPI interface {
	Stats(ctx context.Context) (*service.Stats, error)
	AllOrders(ctx context.Context) ([]models.AdminOrder, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	AllUsers(ctx context.Context) ([]models.User, error)
}

// OrderStatusAPI is the admin-side status change, without the ownership check.
type OrderStatusAPI interface {
	UpdateStatus(ctx context.Context, orderID string, upd models.StatusUpdate) (*models.Order, error)
}

type AdminHTTP struct {
	Svc    AdminAPI
	Orders OrderStatusAPI
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	st, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "admin_stats", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *AdminHTTP) Orders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	orders, err := h.Svc.AllOrders(ctx)
	if err != nil {
		return fail(l, "admin_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")

	products, err := h.Svc.AllProducts(ctx)
	if err != nil {
		return fail(l, "admin_products", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AdminHTTP) Users(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users")

	users, err := h.Svc.AllUsers(ctx)
	if err != nil {
		return fail(l, "admin_users", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	var req transport.AdminStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "admin_update_status", "invalid body", err)
	}

	order, err := h.Orders.UpdateStatus(ctx, c.Param("id"), req.ToUpdate())
	if err != nil {
		return fail(l, "admin_update_status", err)
	}

	l.Info("admin_update_status_success", "order_id", order.ID.Hex())
	return c.JSON(http.StatusOK, orderResponse{Message: "Order updated", Order: order})
}
