package usecase

import (
	"context"

	"bookshelf/internal/domain/entity"
	"bookshelf/internal/domain/repository"
	"bookshelf/internal/domain/service"
	"bookshelf/pkg/errors"
	"bookshelf/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo     repository.ReviewRepository
	summaryService service.SummaryService
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository, summaryService service.SummaryService) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:     reviewRepo,
		summaryService: summaryService,
	}
}

type SubmitReviewInput struct {
	Rating int
	Text   string
	UserID string // empty for anonymous reviews
}

// SubmitReview validates the submission and runs the rating transaction.
// Validation happens before any store I/O; the repository guarantees the
// review record and the book's rollup fields become visible together.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, bookID string, input *SubmitReviewInput) (*entity.Review, error) {
	if bookID == "" {
		return nil, errors.Validation("No book ID has been provided", nil)
	}
	if input == nil {
		return nil, errors.Validation("A valid review has not been provided", nil)
	}
	if input.Text == "" {
		return nil, errors.Validation("Review text is required", nil)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.Validation("Rating must be between 1 and 5", nil)
	}

	review := &entity.Review{
		Rating: input.Rating,
		Text:   input.Text,
		UserID: input.UserID,
	}

	if err := uc.reviewRepo.AddWithRating(ctx, bookID, review); err != nil {
		logger.Error("Failed to submit review for book %s: %v", bookID, err)
		return nil, err
	}

	return review, nil
}

// ListReviews returns the book's reviews, newest first.
func (uc *ReviewUseCase) ListReviews(ctx context.Context, bookID string) ([]*entity.Review, error) {
	if bookID == "" {
		return nil, errors.Validation("No book ID has been provided", nil)
	}
	return uc.reviewRepo.ListByBookID(ctx, bookID)
}

// SubscribeReviews registers fn for live updates of one book's reviews.
func (uc *ReviewUseCase) SubscribeReviews(ctx context.Context, bookID string, fn func([]*entity.Review)) (func(), error) {
	if bookID == "" {
		return nil, errors.Validation("No book ID has been provided", nil)
	}
	return uc.reviewRepo.Subscribe(ctx, bookID, fn)
}

// SummarizeReviews produces a one-sentence summary of the book's
// reviews. Failures of the summarization service surface as UPSTREAM
// errors so the handler can degrade to a fallback message.
func (uc *ReviewUseCase) SummarizeReviews(ctx context.Context, bookID string) (string, error) {
	reviews, err := uc.ListReviews(ctx, bookID)
	if err != nil {
		return "", err
	}
	if len(reviews) == 0 {
		return "", errors.NotFound("Reviews to summarize", nil)
	}

	texts := make([]string, 0, len(reviews))
	for _, review := range reviews {
		texts = append(texts, review.Text)
	}

	summary, err := uc.summaryService.Summarize(ctx, texts)
	if err != nil {
		logger.Warn("Review summarization failed for book %s: %v", bookID, err)
		return "", err
	}

	return summary, nil
}
