package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/metrics"
	"github.com/Skotchmaster/farmconnect/internal/service"
	"github.com/Skotchmaster/farmconnect/internal/store"
)

type FarmHTTP struct {
	Svc     *service.FarmService
	Store   *store.Store
	Metrics *metrics.Collector
}

// fail logs err under event and maps it to an HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoChange):
		l.Warn(event, "status", http.StatusConflict, "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
