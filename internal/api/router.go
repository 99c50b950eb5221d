package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/99minutos/orderdesk/docs"
	"github.com/99minutos/orderdesk/internal/api/handler"
	"github.com/99minutos/orderdesk/internal/api/middleware"
	"github.com/99minutos/orderdesk/internal/core/domain"
	"github.com/99minutos/orderdesk/internal/core/ports"
	"github.com/99minutos/orderdesk/internal/infrastructure/http/handlers"
)

// Options carries the HTTP-level settings of the router.
type Options struct {
	// JWTSecret enables bearer-token checks on /users and /orders when non-empty.
	JWTSecret      string
	AllowedOrigins []string
	// RateLimitRPS of zero disables the per-IP limiter.
	RateLimitRPS   float64
	RateLimitBurst int
	BodyLimit      string
	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Dependencies are the services the routes delegate to. Auth and Readiness
// are optional.
type Dependencies struct {
	Users     ports.UserService
	Orders    ports.OrderService
	Auth      ports.AuthService
	Readiness *handlers.HealthDependenciesHandler
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "orderdesk",
		Registerer: opts.Registerer,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, handler.HeaderIdempotencyKey},
		AllowCredentials: true,
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	if opts.RateLimitRPS > 0 {
		e.Use(echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
			Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(opts.RateLimitRPS),
				Burst:     opts.RateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			},
		}))
	}

	// --- Health probes and tooling (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: opts.Gatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	var guard, managers []echo.MiddlewareFunc
	if opts.JWTSecret != "" {
		guard = append(guard, middleware.Auth(opts.JWTSecret))
		managers = append(managers, guard...)
		managers = append(managers, middleware.RBAC(domain.RoleAdmin, domain.RoleManager))
	}
	if deps.Auth != nil {
		e.POST("/auth", handler.NewAuthHandler(deps.Auth).Login)
	}

	// --- Users ---
	users := handler.NewUserHandler(deps.Users)
	ug := e.Group("/users", managers...)
	ug.GET("", users.List)
	ug.POST("", users.Create)
	ug.PATCH("", users.Update)
	ug.DELETE("", users.Delete)

	// --- Orders ---
	orders := handler.NewOrderHandler(deps.Orders)
	og := e.Group("/orders", guard...)
	og.GET("", orders.List)
	og.POST("", orders.Create)
	og.PATCH("", orders.Update)
	og.DELETE("", orders.Delete)

	return e
}
