package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"salesleads/internal/service"
)

// RunImport imports the mock Dynamics data and waits for the result.
func (h *Handler) RunImport(c echo.Context) error {
	if h.importer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "import sources not configured")
	}
	summary, err := h.importer.Run(c.Request().Context())
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return mapServiceError(err)
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"customers": summary.Customers,
		"leads":     summary.Leads,
		"owners":    summary.Owners,
	})
}

func (h *Handler) TriggerImport(c echo.Context) error {
	if h.trigger == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "import not configured")
	}
	started, err := h.trigger.TriggerImport(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !started {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"message": "import already running",
		})
	}
	return c.JSON(http.StatusAccepted, map[string]any{
		"ok":      true,
		"message": "import started",
	})
}

func (h *Handler) GetImportStatus(c echo.Context) error {
	resp := map[string]any{
		"configured": h.trigger != nil,
		"running":    false,
	}
	if h.trigger != nil {
		status := h.trigger.Status()
		resp["running"] = status.Running
		resp["lastResult"] = status.LastResult
		resp["lastError"] = status.LastError
	}

	run, err := h.svc.LastImport(c.Request().Context())
	switch {
	case err == nil:
		resp["lastRun"] = run
	case errors.Is(err, service.ErrNotFound):
		resp["lastRun"] = nil
	default:
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
