package router

import (
	"github.com/labstack/echo/v4"

	"bookshelf/internal/adapter/api/handler"
)

func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws/books", wsHandler.SubscribeBooks)
	e.GET("/v1/ws/books/:id/reviews", wsHandler.SubscribeReviews)
}
