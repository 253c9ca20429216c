package router

import (
	"github.com/labstack/echo/v4"

	"bookshelf/internal/adapter/api/handler"
	"bookshelf/pkg/logger"
)

// SetupDevRouter registers development-only endpoints. In any other
// environment it registers nothing.
func SetupDevRouter(e *echo.Echo, environment string) {
	if environment != "development" {
		return
	}

	devHandler := handler.GetDevHandler()

	logger.Info("Registering development routes")
	e.POST("/v1/dev/seed", devHandler.Seed)
}
