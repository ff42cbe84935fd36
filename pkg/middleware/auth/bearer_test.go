package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emart/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func issue(t *testing.T, role string) string {
	t.Helper()
	now := time.Now()
	tok, err := tokens.CreateAccessToken(role, "64b7f0c2a1b2c3d4e5f60718", now, now.Add(time.Hour), secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return c, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	m := NewBearerMiddleware(secret)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := run(t, m.RequireAuth, tt.header)
			require.Error(t, err)
			assert.Equal(t, tt.status, statusOf(t, err))
		})
	}
}

func TestRequireAuth_SetsIdentity(t *testing.T) {
	t.Parallel()
	m := NewBearerMiddleware(secret)

	c, err := run(t, m.RequireAuth, "bearer "+issue(t, tokens.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", c.Get(ContextUserID))
	assert.Equal(t, tokens.RoleUser, c.Get(ContextRole))
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	m := NewBearerMiddleware(secret)

	_, err := run(t, m.RequireAdmin, "Bearer "+issue(t, tokens.RoleUser))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	c, err := run(t, m.RequireAdmin, "Bearer "+issue(t, tokens.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleAdmin, c.Get(ContextRole))
}
