package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/adapter/repository"
	"bookshelf/internal/domain/entity"
	"bookshelf/pkg/errors"
)

type stubSummaryService struct {
	summary string
	err     error
	prompts [][]string
}

func (s *stubSummaryService) Summarize(ctx context.Context, reviewTexts []string) (string, error) {
	s.prompts = append(s.prompts, reviewTexts)
	return s.summary, s.err
}

func newReviewFixture(t *testing.T) (*ReviewUseCase, *repository.MemoryStore, *entity.Book, *stubSummaryService) {
	t.Helper()

	store := repository.NewMemoryStore()
	book := &entity.Book{Title: "Paper Cities", Author: "Maria Garcia", Genre: "Fantasy", Price: 3}
	require.NoError(t, store.Create(context.Background(), book))

	summary := &stubSummaryService{summary: "Readers loved it."}
	uc := NewReviewUseCase(repository.NewMemoryReviewRepository(store), summary)
	return uc, store, book, summary
}

func TestSubmitReviewValidation(t *testing.T) {
	uc, _, book, _ := newReviewFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		bookID string
		input  *SubmitReviewInput
	}{
		{"empty book id", "", &SubmitReviewInput{Rating: 4, Text: "good"}},
		{"nil input", book.ID, nil},
		{"empty text", book.ID, &SubmitReviewInput{Rating: 4}},
		{"rating too low", book.ID, &SubmitReviewInput{Rating: 0, Text: "good"}},
		{"rating too high", book.ID, &SubmitReviewInput{Rating: 6, Text: "good"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.SubmitReview(ctx, tc.bookID, tc.input)
			assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
		})
	}
}

func TestSubmitReviewUpdatesRollup(t *testing.T) {
	uc, store, book, _ := newReviewFixture(t)
	ctx := context.Background()

	review, err := uc.SubmitReview(ctx, book.ID, &SubmitReviewInput{Rating: 5, Text: "Loved it", UserID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)

	got, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRatings)
	assert.Equal(t, 5.0, got.SumRating)
	assert.Equal(t, 5.0, got.AvgRating)
}

func TestSubmitReviewAnonymousAllowed(t *testing.T) {
	uc, _, book, _ := newReviewFixture(t)

	review, err := uc.SubmitReview(context.Background(), book.ID, &SubmitReviewInput{Rating: 3, Text: "fine"})
	require.NoError(t, err)
	assert.Empty(t, review.UserID)
}

func TestSubmitReviewMissingBook(t *testing.T) {
	uc, _, _, _ := newReviewFixture(t)

	_, err := uc.SubmitReview(context.Background(), "missing", &SubmitReviewInput{Rating: 3, Text: "fine"})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestListReviewsRequiresBookID(t *testing.T) {
	uc, _, _, _ := newReviewFixture(t)

	_, err := uc.ListReviews(context.Background(), "")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestSummarizeReviews(t *testing.T) {
	uc, _, book, summary := newReviewFixture(t)
	ctx := context.Background()

	_, err := uc.SubmitReview(ctx, book.ID, &SubmitReviewInput{Rating: 5, Text: "Loved it"})
	require.NoError(t, err)
	_, err = uc.SubmitReview(ctx, book.ID, &SubmitReviewInput{Rating: 2, Text: "Not for me"})
	require.NoError(t, err)

	got, err := uc.SummarizeReviews(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Readers loved it.", got)

	require.Len(t, summary.prompts, 1)
	assert.ElementsMatch(t, []string{"Loved it", "Not for me"}, summary.prompts[0])
}

func TestSummarizeReviewsNoReviews(t *testing.T) {
	uc, _, book, summary := newReviewFixture(t)

	_, err := uc.SummarizeReviews(context.Background(), book.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Empty(t, summary.prompts)
}

func TestSummarizeReviewsUpstreamFailure(t *testing.T) {
	uc, _, book, summary := newReviewFixture(t)
	summary.err = errors.Upstream("Summarization service returned an error", nil)
	ctx := context.Background()

	_, err := uc.SubmitReview(ctx, book.ID, &SubmitReviewInput{Rating: 4, Text: "good"})
	require.NoError(t, err)

	_, err = uc.SummarizeReviews(ctx, book.ID)
	assert.True(t, errors.Is(err, "UPSTREAM_ERROR"))
}

func TestSubscribeReviewsDelivers(t *testing.T) {
	uc, _, book, _ := newReviewFixture(t)
	ctx := context.Background()

	var got []*entity.Review
	cancel, err := uc.SubscribeReviews(ctx, book.ID, func(reviews []*entity.Review) {
		got = reviews
	})
	require.NoError(t, err)
	defer cancel()

	_, err = uc.SubmitReview(ctx, book.ID, &SubmitReviewInput{Rating: 4, Text: "good"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Text)
}
