package router

import (
	"github.com/labstack/echo/v4"

	"bookshelf/internal/adapter/api/handler"
	"bookshelf/internal/adapter/api/middleware"
)

// SetupReviewRouter initializes review routes
func SetupReviewRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimitMiddleware *middleware.RateLimitMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	e.GET("/v1/books/:id/reviews", reviewHandler.ListReviews)
	e.GET("/v1/books/:id/summary", reviewHandler.GetSummary)

	// Anonymous submissions are allowed; a bearer token, when present,
	// pins the reviewer identity.
	e.POST("/v1/books/:id/reviews", reviewHandler.SubmitReview,
		authMiddleware.OptionalAuth, rateLimitMiddleware.Limit("submit_review"))
}
