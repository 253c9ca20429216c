package repository

import (
	"context"

	"bookshelf/internal/domain/entity"
)

// ReviewRepository stores reviews as children of a book.
//
// AddWithRating must be atomic: the review is created and the parent
// book's numRatings/sumRating/avgRating are updated in one transaction,
// so no reader ever observes one without the other. Concurrent calls
// against the same book must all be counted (no lost increments); the
// implementation retries on write conflict and returns a CONFLICT error
// once the retry budget is exhausted. A missing book is a NOT_FOUND
// error, never an implicit create.
type ReviewRepository interface {
	AddWithRating(ctx context.Context, bookID string, review *entity.Review) error
	ListByBookID(ctx context.Context, bookID string) ([]*entity.Review, error)

	// Subscribe registers fn to receive the book's reviews, newest
	// first, after every change. Cancel semantics match
	// BookRepository.Subscribe.
	Subscribe(ctx context.Context, bookID string, fn func([]*entity.Review)) (func(), error)
}
