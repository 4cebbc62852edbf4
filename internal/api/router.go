package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ankatech/investor-admin/docs" // Swagger docs
	"github.com/ankatech/investor-admin/internal/api/handler"
	"github.com/ankatech/investor-admin/internal/api/middleware"
	"github.com/ankatech/investor-admin/internal/api/templates"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/infrastructure/cache"
	"github.com/ankatech/investor-admin/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Clients   ports.ClientService
	Validator ports.InputValidator
	// Auth is nil when authentication is disabled; every request then acts
	// as an administrator.
	Auth          ports.AuthService
	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool
	Cache         cache.Store
	Checks        []handlers.DependencyCheck
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = handler.NewValidator()
	e.Renderer = templates.MustNew()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	store := d.Cache
	if store == nil {
		store = cache.Nop{}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.Metrics())
	e.Use(middleware.Cache(store))

	// --- Ops (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	apiAuth, pageAuth := middleware.Anonymous(), middleware.Anonymous()
	if d.Auth != nil {
		apiAuth = middleware.Auth(d.JWTSecret)
		pageAuth = middleware.AuthPage(d.JWTSecret)

		authHandler := handler.NewAuthHandler(d.Auth, d.TokenTTL, d.SecureCookies)
		e.POST("/api/auth/login", authHandler.Login)
		e.GET("/login", authHandler.LoginPage)
		e.POST("/login", authHandler.LoginSubmit)
		e.POST("/logout", authHandler.Logout)
	} else {
		toHome := func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/") }
		e.GET("/login", toHome)
		e.POST("/logout", toHome)
	}

	read := middleware.RBAC(domain.RoleAdmin, domain.RoleViewer)
	write := middleware.RBAC(domain.RoleAdmin)

	// --- HTML screens ---
	pages := handler.NewPageHandler(d.Clients, d.Validator, d.Log)

	e.GET("/", pages.Home, pageAuth, read)
	e.GET("/clients", pages.Clients, pageAuth, read)
	e.GET("/clients/new", pages.NewClient, pageAuth, write)
	e.POST("/clients", pages.CreateClient, pageAuth, write)
	e.GET("/clients/:id", pages.Detail, pageAuth, read)
	e.GET("/clients/:id/edit", pages.EditClient, pageAuth, write)
	e.POST("/clients/:id", pages.UpdateClient, pageAuth, write)
	e.GET("/assets", pages.Assets, pageAuth, read)

	// --- JSON API ---
	apiHandler := handler.NewClientAPIHandler(d.Clients)

	api := e.Group("/api", apiAuth)
	api.GET("/clients", apiHandler.ListClients, read)
	api.POST("/clients", apiHandler.CreateClient, write)
	api.PATCH("/clients/:id", apiHandler.UpdateClient, write)
	api.GET("/clients/:id/allocations", apiHandler.Allocations, read)
	api.GET("/assets", apiHandler.ListAssets, read)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
