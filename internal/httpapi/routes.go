package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"salesleads/internal/auth"
)

func (a *API) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := e.Group("/api/v1")
	a.registerPublicV1Routes(v1)
	a.registerLoginV1Routes(v1)
	a.registerAuthV1Routes(v1)
	a.registerInternalRoutes(e)
}

func (a *API) registerPublicV1Routes(v1 *echo.Group) {
	v1.GET("/customers", a.handler.ListCustomers)
	v1.GET("/leads", a.handler.ListLeads)
	v1.GET("/salespeople", a.handler.ListSalespeople)
	v1.GET("/analysis/:owner", a.handler.GetAnalysis)
	v1.GET("/documents", a.handler.ListDocuments)
	v1.GET("/documents/:id", a.handler.GetDocument)
	v1.GET("/documents/:id/slices/:index", a.handler.GetDocumentSlice)
	v1.GET("/documents/:id/content", a.handler.GetDocumentContent)
}

func (a *API) registerLoginV1Routes(v1 *echo.Group) {
	v1.GET("/auth/providers", a.handler.AuthProviders)
	v1.POST("/auth/login", a.handler.LocalLogin)
	v1.POST("/auth/ldap", a.handler.LDAPLogin)
}

func (a *API) registerAuthV1Routes(v1 *echo.Group) {
	v1Auth := v1.Group("")
	v1Auth.Use(a.auth.Middleware)
	v1Auth.GET("/whoami", a.handler.Whoami)
	v1Auth.POST("/documents", a.handler.UploadDocument)
	v1Auth.POST("/import", a.handler.RunImport)
}

func (a *API) registerInternalRoutes(e *echo.Echo) {
	internal := e.Group("/api/internal")
	internal.Use(a.auth.Middleware, auth.RequireAdmin)
	internal.POST("/tokens", a.handler.CreateToken)
	internal.POST("/import/trigger", a.handler.TriggerImport)
	internal.GET("/import/status", a.handler.GetImportStatus)
}
