package router

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"learnpath/internal/auth"
	"learnpath/internal/handler"
	"learnpath/internal/metrics"
)

// Dependencies carries what the middleware chain needs besides handlers.
type Dependencies struct {
	JWTSecret  []byte
	TokenStore auth.TokenStoreInterface
	Logger     zerolog.Logger
	Metrics    *metrics.Collector
	Gatherer   prometheus.Gatherer
	// Health reports whether backing services are reachable.
	Health func(ctx context.Context) error
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	deps Dependencies,
	pathHandler *handler.PathHandler,
	moduleHandler *handler.ModuleHandler,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(deps.Logger))
	e.Use(middleware.Recover())
	e.Use(Metrics(deps.Metrics))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		if deps.Health != nil {
			if err := deps.Health(c.Request().Context()); err != nil {
				deps.Logger.Error().Err(err).Msg("health check failed")
				return c.String(http.StatusServiceUnavailable, "unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	})

	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := RequireAuth(deps.JWTSecret, deps.TokenStore, deps.Metrics)
	requireAdmin := RequireAdmin(deps.Metrics)

	api := e.Group("/api")

	paths := api.Group("/path")
	paths.GET("", pathHandler.ListPaths)
	paths.POST("", pathHandler.CreatePath)
	paths.GET("/:pathId", pathHandler.GetPath)
	paths.PUT("/:pathId", pathHandler.UpdatePath)
	paths.DELETE("/:pathId", pathHandler.DeletePath)
	paths.POST("/:pathId/modules", pathHandler.AddModule)

	modules := api.Group("/module")
	modules.GET("", moduleHandler.ListModules)
	modules.POST("", moduleHandler.CreateModule)
	modules.GET("/:moduleId", moduleHandler.GetModule)
	modules.PUT("/:moduleId", moduleHandler.UpdateModule)
	modules.DELETE("/:moduleId", moduleHandler.DeleteModule)

	users := api.Group("/user")
	users.POST("/login", authHandler.Login)
	users.POST("/refresh", authHandler.Refresh)
	users.POST("/logout", authHandler.Logout, requireAuth)
	users.POST("/password-reset", authHandler.RequestPasswordReset)
	users.POST("/password-reset/:token", authHandler.ConfirmPasswordReset)

	users.GET("", userHandler.ListUsers, requireAuth, requireAdmin)
	users.POST("", userHandler.CreateUser, requireAuth)
	users.GET("/:userId", userHandler.GetUser, requireAuth, requireAdmin)
	users.PUT("/:userId", userHandler.UpdateUser, requireAuth, requireAdmin)
	users.DELETE("/:userId", userHandler.DeleteUser, requireAuth, requireAdmin)
}
