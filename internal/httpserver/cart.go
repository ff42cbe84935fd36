package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/transport"
	"github.com/Skotchmaster/emart/pkg/logging"
)

type CartAPI interface {
	GetCart(ctx context.Context, userID string) (*models.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, error)
	Clear(ctx context.Context, userID string) (*models.CartView, error)
}

type CartHTTP struct {
	Svc CartAPI
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	who, err := identity(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.GetCart(ctx, who.UserID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	who, err := identity(c)
	if err != nil {
		return err
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_item", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("add_item_error", "status", http.StatusBadRequest, "error", err)
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.Svc.AddItem(ctx, who.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_item", err)
	}

	l.Info("add_item_success", "product_id", req.ProductID, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	who, err := identity(c)
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_item", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_item_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	cart, err := h.Svc.UpdateItem(ctx, who.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "update_item", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	who, err := identity(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.RemoveItem(ctx, who.UserID, c.Param("productId"))
	if err != nil {
		return fail(l, "remove_item", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	who, err := identity(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.Clear(ctx, who.UserID)
	if err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}
