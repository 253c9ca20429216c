package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/adapter/repository"
)

func TestSeedProducesConsistentRollups(t *testing.T) {
	store := repository.NewMemoryStore()
	uc := NewSeedUseCase(repository.NewMemoryBookRepository(store), repository.NewMemoryReviewRepository(store))
	ctx := context.Background()

	books, err := uc.Seed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, books, 5)

	for _, book := range books {
		reviews, err := store.ListByBookID(ctx, book.ID)
		require.NoError(t, err)

		assert.Equal(t, len(reviews), book.NumRatings)

		var sum float64
		for _, review := range reviews {
			sum += float64(review.Rating)
		}
		assert.Equal(t, sum, book.SumRating)

		if book.NumRatings == 0 {
			assert.Equal(t, 0.0, book.AvgRating)
		} else {
			assert.Equal(t, sum/float64(book.NumRatings), book.AvgRating)
		}
	}
}
