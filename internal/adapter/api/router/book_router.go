package router

import (
	"github.com/labstack/echo/v4"

	"bookshelf/internal/adapter/api/handler"
	"bookshelf/internal/adapter/api/middleware"
)

// SetupBookRouter initializes book routes
func SetupBookRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimitMiddleware *middleware.RateLimitMiddleware) {
	bookHandler := handler.GetBookHandler()

	// Public routes
	e.GET("/v1/books", bookHandler.ListBooks)
	e.GET("/v1/books/:id", bookHandler.GetBook)

	// Creating books is an administrative path; image upload only needs
	// a signed-in caller.
	e.POST("/v1/books", bookHandler.CreateBook, authMiddleware.Authenticate)
	e.POST("/v1/books/:id/image", bookHandler.UploadImage,
		authMiddleware.OptionalAuth, rateLimitMiddleware.Limit("upload_image"))
}
