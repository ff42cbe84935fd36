package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/service"
	"github.com/Skotchmaster/emart/internal/transport"
	"github.com/Skotchmaster/emart/internal/util"
	"github.com/Skotchmaster/emart/pkg/logging"
)

type CatalogAPI interface {
	List(ctx context.Context, q service.ProductQuery) (*service.ProductPage, error)
	Search(ctx context.Context, query string, page, limit int) (*service.ProductPage, error)
	Get(ctx context.Context, productID string) (*models.Product, error)
	Create(ctx context.Context, p models.Product) (*models.Product, error)
	Update(ctx context.Context, productID string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
}

type CatalogHTTP struct {
	Svc CatalogAPI
}

type productResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

func pageParams(c echo.Context) (int, int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	return page, limit
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, limit := pageParams(c)
	res, err := h.Svc.List(ctx, service.ProductQuery{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return fail(l, "get_products", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page, limit := pageParams(c)
	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, limit)
	if err != nil {
		return fail(l, "search_products", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	p, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("create_product_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	p, err := h.Svc.Create(ctx, req.ToModel())
	if err != nil {
		return fail(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", p.ID.Hex())
	return c.JSON(http.StatusCreated, productResponse{Message: "Product created", Product: p})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_product", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_product_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	p, err := h.Svc.Update(ctx, c.Param("id"), req.ToPatch())
	if err != nil {
		return fail(l, "update_product", err)
	}

	l.Info("update_product_success", "product_id", p.ID.Hex())
	return c.JSON(http.StatusOK, productResponse{Message: "Product updated", Product: p})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	if err := h.Svc.Delete(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}
