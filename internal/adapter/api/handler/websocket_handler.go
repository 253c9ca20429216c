package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"bookshelf/internal/domain/entity"
	infraws "bookshelf/internal/infrastructure/websocket"
	"bookshelf/internal/usecase"
	"bookshelf/pkg/logger"
	"bookshelf/pkg/response"
)

type WebSocketHandler struct {
	bookUseCase   *usecase.BookUseCase
	reviewUseCase *usecase.ReviewUseCase
	upgrader      websocket.Upgrader
}

func NewWebSocketHandler(bookUseCase *usecase.BookUseCase, reviewUseCase *usecase.ReviewUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		bookUseCase:   bookUseCase,
		reviewUseCase: reviewUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SubscribeBooks streams the filtered book listing: one JSON array on
// every change until the client disconnects.
func (h *WebSocketHandler) SubscribeBooks(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return response.Error(c, err)
	}

	client := infraws.NewClient(conn)
	go client.WritePump()

	cancel, err := h.bookUseCase.SubscribeBooks(
		c.Request().Context(),
		bookFilterFromQuery(c),
		func(books []*entity.Book) {
			client.SendJSON(books)
		},
	)
	if err != nil {
		logger.Error("Book subscription failed: %v", err)
		client.Close()
		return nil
	}
	defer cancel()

	client.ReadPump()
	return nil
}

// SubscribeReviews streams one book's reviews, newest first.
func (h *WebSocketHandler) SubscribeReviews(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return response.Error(c, err)
	}

	client := infraws.NewClient(conn)
	go client.WritePump()

	cancel, err := h.reviewUseCase.SubscribeReviews(
		c.Request().Context(),
		c.Param("id"),
		func(reviews []*entity.Review) {
			client.SendJSON(reviews)
		},
	)
	if err != nil {
		logger.Error("Review subscription failed: %v", err)
		client.Close()
		return nil
	}
	defer cancel()

	client.ReadPump()
	return nil
}
