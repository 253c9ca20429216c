package router

import (
	"github.com/labstack/echo/v4"

	"bookshelf/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimitMiddleware *middleware.RateLimitMiddleware) {
	SetupBookRouter(e, authMiddleware, rateLimitMiddleware)
	SetupReviewRouter(e, authMiddleware, rateLimitMiddleware)
	SetupHealthRouter(e)
}
