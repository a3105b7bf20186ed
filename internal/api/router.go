package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/account-service/docs"
	"github.com/99minutos/account-service/internal/api/handler"
	"github.com/99minutos/account-service/internal/api/middleware"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/infrastructure/http/handlers"
	"github.com/99minutos/account-service/pkg/logger"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Accounts ports.AccountService
	Tokens   ports.TokenValidator
	Guard    ports.AccessGuard
	Checks   []handlers.DependencyCheck
	Log      zerolog.Logger

	// MetricsRegisterer receives the HTTP request metrics. Defaults to the
	// global Prometheus registerer.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestContext(deps.Log))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "account",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	accounts := handler.NewAccountHandler(deps.Accounts)
	auth := middleware.Auth(deps.Tokens)

	v1 := e.Group("/v1")

	// --- Public account flows ---
	v1.POST("/accounts", accounts.Register)
	v1.POST("/accounts/confirm", accounts.Confirm)
	v1.PATCH("/accounts/unlock", accounts.Unlock)
	v1.POST("/accounts/password/reset", accounts.ResetPassword)

	// --- Session ---
	v1.POST("/auth/token", accounts.IssueToken)
	v1.POST("/auth/refresh", accounts.RefreshToken)

	// --- Authenticated ---
	v1.PATCH("/accounts/password", accounts.UpdatePassword, auth)
	v1.GET("/accounts/:id", accounts.Get, auth, middleware.RequireOwnerOr(deps.Guard, "id", domain.RoleAdmin))

	admin := v1.Group("/admin", auth, middleware.RequireRole(deps.Guard, domain.RoleAdmin))
	admin.GET("/accounts", accounts.LookupRemote)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestContext attaches the request id and a logger carrying it to the
// request context, so calls to the auth service reuse the same id.
func requestContext(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), log, id)))
			return next(c)
		}
	}
}

// requestLogger writes one structured line per request.
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
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
