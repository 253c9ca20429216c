package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"bookshelf/internal/usecase"
	"bookshelf/pkg/response"
)

// DevHandler holds development-only endpoints. Its routes are only
// registered when ENVIRONMENT=development.
type DevHandler struct {
	seedUseCase *usecase.SeedUseCase
}

func NewDevHandler(seedUseCase *usecase.SeedUseCase) *DevHandler {
	return &DevHandler{
		seedUseCase: seedUseCase,
	}
}

func (h *DevHandler) Seed(c echo.Context) error {
	count, _ := strconv.Atoi(c.QueryParam("count"))

	books, err := h.seedUseCase.Seed(c.Request().Context(), count)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, books)
}
