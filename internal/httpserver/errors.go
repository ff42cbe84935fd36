package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emart/internal/service"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrEmptyCart, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// fail logs err under "<op>_error" and turns it into the HTTP error the client sees.
// Anything that is not a known service error becomes an opaque 500.
func fail(l *slog.Logger, op string, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			l.Warn(op+"_error", "status", s.status, "error", err)
			return echo.NewHTTPError(s.status, clientMessage(err, s.err))
		}
	}
	l.Error(op+"_error", "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// clientMessage strips a trailing category such as ": validation".
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	switch sentinel {
	case service.ErrValidation, service.ErrUnauthorized, service.ErrForbidden, service.ErrConflict:
		if trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error()); trimmed != msg {
			return trimmed
		}
	}
	return msg
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
