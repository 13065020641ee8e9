package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ListCustomers(c echo.Context) error {
	customers, err := h.svc.Customers(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": customers})
}

func (h *Handler) ListLeads(c echo.Context) error {
	items, err := h.svc.Leads(c.Request().Context(), c.QueryParam("owner"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) ListSalespeople(c echo.Context) error {
	people, err := h.svc.Salespeople(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": people})
}

func (h *Handler) GetAnalysis(c echo.Context) error {
	analysis, err := h.svc.Analyze(c.Request().Context(), pathParam(c, "owner"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, analysis)
}
