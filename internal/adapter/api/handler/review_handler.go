package handler

import (
	"github.com/labstack/echo/v4"

	"bookshelf/internal/usecase"
	"bookshelf/pkg/errors"
	"bookshelf/pkg/response"
	"bookshelf/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type submitReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"required"`
	UserID string `json:"user_id"`
}

// SubmitReview is the form submission boundary: the duck-typed form
// payload becomes a validated struct before it reaches the rating
// transaction. A verified bearer identity overrides the form's user_id.
func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("A valid review has not been provided", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := req.UserID
	if uid, ok := c.Get("uid").(string); ok && uid != "" {
		userID = uid
	}

	review, err := h.reviewUseCase.SubmitReview(c.Request().Context(), c.Param("id"), &usecase.SubmitReviewInput{
		Rating: req.Rating,
		Text:   req.Text,
		UserID: userID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) ListReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	pagination := utils.GetPaginationParams(c)
	total := int64(len(reviews))

	start := pagination.Offset
	if start > len(reviews) {
		start = len(reviews)
	}
	end := start + pagination.PageSize
	if end > len(reviews) {
		end = len(reviews)
	}

	return response.Paginated(c, reviews[start:end], total, pagination.Page, pagination.PageSize)
}

// GetSummary returns the AI-generated review summary. Upstream failures
// degrade to a fallback payload instead of an error status so the detail
// page stays usable.
func (h *ReviewHandler) GetSummary(c echo.Context) error {
	summary, err := h.reviewUseCase.SummarizeReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, "UPSTREAM_ERROR") {
			return response.Success(c, map[string]interface{}{
				"summary":   "",
				"available": false,
				"message":   "Error summarizing reviews.",
			})
		}
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"summary":   summary,
		"available": true,
	})
}
