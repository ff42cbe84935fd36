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

type OrderAPI interface {
	Checkout(ctx context.Context, userID string, addr models.ShippingAddress) (*models.Order, error)
	ListForUser(ctx context.Context, userID string) ([]models.Order, error)
	Get(ctx context.Context, who service.Identity, orderID string) (*models.Order, error)
	UpdateStatusAs(ctx context.Context, who service.Identity, orderID string, upd models.StatusUpdate) (*models.Order, error)
}

type OrderHTTP struct {
	Svc OrderAPI
}

type orderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	who, err := identity(c)
	if err != nil {
		return err
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("checkout_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	order, err := h.Svc.Checkout(ctx, who.UserID, req.ShippingAddress)
	if err != nil {
		return fail(l, "checkout", err)
	}

	l.Info("checkout_success", "order_id", order.ID.Hex())
	return c.JSON(http.StatusCreated, orderResponse{Message: "Order created successfully", Order: order})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	who, err := identity(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.ListForUser(ctx, who.UserID)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	who, err := identity(c)
	if err != nil {
		return err
	}
	order, err := h.Svc.Get(ctx, who, c.Param("id"))
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	return h.updateStatus(c, "order.update_status", "Order status updated", func(s string) models.StatusUpdate {
		st := models.OrderStatus(s)
		return models.StatusUpdate{OrderStatus: &st}
	})
}

func (h *OrderHTTP) UpdatePaymentStatus(c echo.Context) error {
	return h.updateStatus(c, "order.update_payment_status", "Payment status updated", func(s string) models.StatusUpdate {
		st := models.PaymentStatus(s)
		return models.StatusUpdate{PaymentStatus: &st}
	})
}

func (h *OrderHTTP) updateStatus(c echo.Context, name, message string, build func(string) models.StatusUpdate) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	who, err := identity(c)
	if err != nil {
		return err
	}

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_status_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	order, err := h.Svc.UpdateStatusAs(ctx, who, c.Param("id"), build(req.Status))
	if err != nil {
		return fail(l, "update_status", err)
	}
	return c.JSON(http.StatusOK, orderResponse{Message: message, Order: order})
}
