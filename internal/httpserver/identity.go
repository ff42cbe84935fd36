package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emart/internal/service"
	middleware "github.com/Skotchmaster/emart/pkg/middleware/auth"
)

func identity(c echo.Context) (service.Identity, error) {
	uid, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || uid == "" {
		return service.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	role, _ := c.Get(middleware.ContextRole).(string)
	return service.Identity{UserID: uid, Role: role}, nil
}
