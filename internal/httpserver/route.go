package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	middleware "github.com/Skotchmaster/emart/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	AdminHandler   *AdminHTTP
	JWTSecret      []byte

	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func(ctx context.Context) error
	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	bearer := middleware.NewBearerMiddleware(d.JWTSecret)
	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/admin-login", d.AuthHandler.AdminLogin)
	auth.GET("/profile", d.AuthHandler.Profile, bearer.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, bearer.RequireAdmin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, bearer.RequireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, bearer.RequireAdmin)

	cart := api.Group("/cart", bearer.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddItem)
	cart.PUT("/update", d.CartHandler.UpdateItem)
	cart.DELETE("/remove/:productId", d.CartHandler.RemoveItem)
	cart.DELETE("/clear", d.CartHandler.Clear)

	orders := api.Group("/orders", bearer.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("/checkout", d.OrderHandler.Checkout)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id/status", d.OrderHandler.UpdateOrderStatus)
	orders.PUT("/:id/payment-status", d.OrderHandler.UpdatePaymentStatus)

	admin := api.Group("/admin", bearer.RequireAdmin)
	admin.GET("/stats", d.AdminHandler.Stats)
	admin.GET("/orders", d.AdminHandler.Orders)
	admin.GET("/products", d.AdminHandler.Products)
	admin.GET("/users", d.AdminHandler.Users)
	admin.PUT("/order/:id/status", d.AdminHandler.UpdateOrderStatus)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Ready(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
	}
	return c.NoContent(http.StatusOK)
}
