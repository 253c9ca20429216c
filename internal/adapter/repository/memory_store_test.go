package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/domain/entity"
	"bookshelf/internal/domain/repository"
	"bookshelf/pkg/errors"
)

func newSeededStore(t *testing.T) (*MemoryStore, *entity.Book) {
	t.Helper()

	store := NewMemoryStore()
	book := &entity.Book{
		Title:  "The Silent Harbor",
		Author: "James Chen",
		Genre:  "Fiction",
		Price:  2,
	}
	require.NoError(t, store.Create(context.Background(), book))
	return store, book
}

func TestAddWithRatingUpdatesRollup(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	review := &entity.Review{Rating: 4, Text: "Great read", UserID: "u1"}
	require.NoError(t, store.AddWithRating(ctx, book.ID, review))

	assert.NotEmpty(t, review.ID)
	assert.False(t, review.Timestamp.IsZero())

	got, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRatings)
	assert.Equal(t, 4.0, got.SumRating)
	assert.Equal(t, 4.0, got.AvgRating)

	reviews, err := store.ListByBookID(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
}

func TestAddWithRatingMissingBook(t *testing.T) {
	store := NewMemoryStore()

	err := store.AddWithRating(context.Background(), "missing", &entity.Review{Rating: 3, Text: "x"})

	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestAddWithRatingExhaustedRetriesSurfacesConflict(t *testing.T) {
	store, book := newSeededStore(t)
	store.MaxAttempts = 0

	err := store.AddWithRating(context.Background(), book.ID, &entity.Review{Rating: 3, Text: "x"})

	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestNoLostUpdatesUnderConcurrency(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			err := store.AddWithRating(ctx, book.ID, &entity.Review{Rating: 1, Text: "ok"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, got.NumRatings)
	assert.Equal(t, float64(writers), got.SumRating)
	assert.Equal(t, 1.0, got.AvgRating)

	reviews, err := store.ListByBookID(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, writers)
}

func TestRollupConsistentWithMixedRatings(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	ratings := []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1}
	var wg sync.WaitGroup
	wg.Add(len(ratings))
	for _, rating := range ratings {
		go func(rating int) {
			defer wg.Done()
			err := store.AddWithRating(ctx, book.ID, &entity.Review{Rating: rating, Text: "ok"})
			assert.NoError(t, err)
		}(rating)
	}
	wg.Wait()

	got, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, len(ratings), got.NumRatings)
	assert.Equal(t, 30.0, got.SumRating)
	assert.Equal(t, 3.0, got.AvgRating)
}

// Readers racing the writers must see a book whose rollup fields are
// internally consistent: with every rating equal to 3, any snapshot has
// sumRating == 3*numRatings, never a half-applied update.
func TestReadersNeverObserveTornRollup(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	const writers = 20
	stop := make(chan struct{})
	var readerWg sync.WaitGroup
	readerWg.Add(1)
	go func() {
		defer readerWg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got, err := store.GetByID(ctx, book.ID)
			if assert.NoError(t, err) {
				assert.Equal(t, 3*float64(got.NumRatings), got.SumRating)
				if got.NumRatings > 0 {
					assert.Equal(t, 3.0, got.AvgRating)
				}
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AddWithRating(ctx, book.ID, &entity.Review{Rating: 3, Text: "ok"}))
		}()
	}
	wg.Wait()
	close(stop)
	readerWg.Wait()
}

func TestReviewsListedNewestFirst(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, store.AddWithRating(ctx, book.ID, &entity.Review{Rating: 3, Text: text}))
	}

	reviews, err := store.ListByBookID(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	for i := 1; i < len(reviews); i++ {
		assert.False(t, reviews[i-1].Timestamp.Before(reviews[i].Timestamp))
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	fiction1 := &entity.Book{Title: "A", Genre: "Fiction", Price: 2}
	fiction2 := &entity.Book{Title: "B", Genre: "Fiction", Price: 2}
	mystery := &entity.Book{Title: "C", Genre: "Mystery", Price: 2}
	for _, b := range []*entity.Book{fiction1, fiction2, mystery} {
		require.NoError(t, store.Create(ctx, b))
	}

	require.NoError(t, store.AddWithRating(ctx, fiction1.ID, &entity.Review{Rating: 3, Text: "ok"}))
	require.NoError(t, store.AddWithRating(ctx, fiction2.ID, &entity.Review{Rating: 5, Text: "ok"}))

	books, err := store.List(ctx, repository.BuildBookQuery(repository.BookFilter{Genre: "Fiction"}))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, fiction2.ID, books[0].ID) // avg 5 before avg 3
	assert.Equal(t, fiction1.ID, books[1].ID)

	books, err = store.List(ctx, repository.BuildBookQuery(repository.BookFilter{Price: "$$"}))
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestSubscribeBooksDeliversAndCancels(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var calls int
	var last []*entity.Book
	cancel, err := store.Subscribe(ctx, repository.BuildBookQuery(repository.BookFilter{}), func(books []*entity.Book) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		last = books
	})
	require.NoError(t, err)

	require.NoError(t, store.AddWithRating(ctx, book.ID, &entity.Review{Rating: 5, Text: "ok"}))

	mu.Lock()
	assert.Equal(t, 1, calls)
	require.Len(t, last, 1)
	assert.Equal(t, 1, last[0].NumRatings)
	mu.Unlock()

	cancel()
	require.NoError(t, store.AddWithRating(ctx, book.ID, &entity.Review{Rating: 5, Text: "ok"}))

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestSubscribeReviewsScopedToBook(t *testing.T) {
	store, book := newSeededStore(t)
	ctx := context.Background()

	other := &entity.Book{Title: "Other", Genre: "Mystery", Price: 1}
	require.NoError(t, store.Create(ctx, other))

	var mu sync.Mutex
	var got []*entity.Review
	cancel, err := store.SubscribeReviews(ctx, book.ID, func(reviews []*entity.Review) {
		mu.Lock()
		defer mu.Unlock()
		got = reviews
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, store.AddWithRating(ctx, other.ID, &entity.Review{Rating: 2, Text: "elsewhere"}))
	mu.Lock()
	assert.Nil(t, got)
	mu.Unlock()

	require.NoError(t, store.AddWithRating(ctx, book.ID, &entity.Review{Rating: 4, Text: "here"}))
	mu.Lock()
	require.Len(t, got, 1)
	assert.Equal(t, "here", got[0].Text)
	mu.Unlock()
}
