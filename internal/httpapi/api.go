package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"salesleads/internal/auth"
	"salesleads/internal/config"
	"salesleads/internal/httpapi/handlers"
	"salesleads/internal/httpapi/middlewares"
	"salesleads/internal/ratelimit"
)

type API struct {
	cfg     config.Config
	auth    *auth.Authenticator
	handler *handlers.Handler
}

func New(cfg config.Config, svc handlers.Service, authn *auth.Authenticator, importer handlers.Importer, trigger handlers.ImportTrigger) *API {
	return &API{
		cfg:     cfg,
		auth:    authn,
		handler: handlers.New(cfg, svc, importer, trigger),
	}
}

func (a *API) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderAccept,
			echo.HeaderContentType,
			echo.HeaderAuthorization,
			"X-API-Token",
		},
		ExposeHeaders: []string{
			handlers.HeaderSliceCount,
			handlers.HeaderSliceIndex,
			"RateLimit-Limit",
			"RateLimit-Remaining",
			"RateLimit-Reset",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 600,
	}))
	if a.cfg.MaxUploadBytes > 0 {
		// Multipart framing adds a little on top of the file itself.
		e.Use(middleware.BodyLimit(strconv.FormatInt(a.cfg.MaxUploadBytes+1<<20, 10)))
	}
	e.Use(middlewares.NewRateLimitMiddleware(a.auth, ratelimit.Config{
		Window:   time.Minute,
		ReadIP:   a.cfg.RateLimitReadIP,
		ReadKey:  a.cfg.RateLimitReadKey,
		WriteIP:  a.cfg.RateLimitWriteIP,
		WriteKey: a.cfg.RateLimitWriteKey,
		SliceIP:  a.cfg.RateLimitSliceIP,
		SliceKey: a.cfg.RateLimitSliceKey,
	}))

	a.registerRoutes(e)
	return e
}
