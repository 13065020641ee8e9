package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"salesleads/internal/auth"
	"salesleads/internal/service"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Whoami(c echo.Context) error {
	claims, ok := auth.GetClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"subject":  claims.Subject,
		"is_admin": claims.IsAdmin,
	})
}

func (h *Handler) AuthProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"providers": h.svc.Providers()})
}

func (h *Handler) LocalLogin(c echo.Context) error {
	var body credentials
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	token, err := h.svc.LocalLogin(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, token)
}

// LDAPLogin binds against the directory and returns an API token.
func (h *Handler) LDAPLogin(c echo.Context) error {
	var body credentials
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	token, err := h.svc.LDAPLogin(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, token)
}

func (h *Handler) CreateToken(c echo.Context) error {
	var req struct {
		Subject string `json:"subject"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"is_admin"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	token, err := h.svc.CreateToken(c.Request().Context(), service.CreateTokenInput{
		Subject: req.Subject,
		Name:    req.Name,
		IsAdmin: req.IsAdmin,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, token)
}
