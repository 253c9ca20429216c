package handler

import (
	"bookshelf/internal/usecase"
)

var (
	bookHandler   *BookHandler
	reviewHandler *ReviewHandler
	devHandler    *DevHandler
)

func Setup(
	bookUseCase *usecase.BookUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	seedUseCase *usecase.SeedUseCase,
) {
	bookHandler = NewBookHandler(bookUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
	devHandler = NewDevHandler(seedUseCase)
}

func GetBookHandler() *BookHandler {
	return bookHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetDevHandler() *DevHandler {
	return devHandler
}
