package routes

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"busboard/internal/api/handlers"
	"busboard/internal/api/middleware"
	"busboard/internal/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, source handlers.RecordSource) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	e.GET("/healthz", handlers.HealthHandler)

	v1 := e.Group("/api/v1")
	{
		v1.GET("/buses", handlers.BusesHandler(source, cfg.Database.Table))
	}
}
