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

type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (*service.AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

type AuthHTTP struct {
	Svc AuthAPI
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return fail(l, "register", err)
	}

	l.Info("register_success", "user_id", res.User.ID.Hex())
	return c.JSON(http.StatusCreated, authResponse{Message: "User registered successfully", Token: res.Token, User: res.User})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	return h.login(c, "auth.login", h.Svc.Login)
}

func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	return h.login(c, "auth.admin_login", h.Svc.AdminLogin)
}

func (h *AuthHTTP) login(c echo.Context, name string, fn func(ctx context.Context, email, password string) (*service.AuthResult, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	res, err := fn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login", err)
	}

	l.Info("login_success", "user_id", res.User.ID.Hex())
	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", Token: res.Token, User: res.User})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	who, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Profile(ctx, who.UserID)
	if err != nil {
		return fail(l, "profile", err)
	}
	return c.JSON(http.StatusOK, user)
}
