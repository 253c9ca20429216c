package usecase

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/adapter/repository"
	domainrepo "bookshelf/internal/domain/repository"
	"bookshelf/internal/domain/service"
	"bookshelf/pkg/errors"
)

type stubFileService struct {
	url     string
	err     error
	uploads int
}

func (s *stubFileService) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	s.uploads++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *stubFileService) DeleteFile(ctx context.Context, fileURL string) error { return nil }

func (s *stubFileService) Close() error { return nil }

func newBookFixture(t *testing.T) (*BookUseCase, *repository.MemoryStore, *stubFileService) {
	t.Helper()

	store := repository.NewMemoryStore()
	files := &stubFileService{url: "https://storage.googleapis.com/covers/abc.jpg"}
	uc := NewBookUseCase(repository.NewMemoryBookRepository(store), files)
	return uc, store, files
}

func TestCreateBookStartsWithZeroRollup(t *testing.T) {
	uc, _, _ := newBookFixture(t)

	book, err := uc.CreateBook(context.Background(), CreateBookInput{
		Title: "A Study in Amber", Author: "Tom Becker", Genre: "Mystery",
		PublicationYear: 2015, Price: 2,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, 0, book.NumRatings)
	assert.Equal(t, 0.0, book.SumRating)
	assert.Equal(t, 0.0, book.AvgRating)
	assert.False(t, book.Timestamp.IsZero())
}

func TestListBooksAppliesFilter(t *testing.T) {
	uc, _, _ := newBookFixture(t)
	ctx := context.Background()

	_, err := uc.CreateBook(ctx, CreateBookInput{Title: "A", Author: "X", Genre: "Fiction", PublicationYear: 2001, Price: 1})
	require.NoError(t, err)
	_, err = uc.CreateBook(ctx, CreateBookInput{Title: "B", Author: "Y", Genre: "Mystery", PublicationYear: 2002, Price: 2})
	require.NoError(t, err)

	books, err := uc.ListBooks(ctx, domainrepo.BookFilter{Genre: "Fiction"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "A", books[0].Title)

	books, err = uc.ListBooks(ctx, domainrepo.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestUpdateBookImage(t *testing.T) {
	uc, store, files := newBookFixture(t)
	ctx := context.Background()

	book, err := uc.CreateBook(ctx, CreateBookInput{Title: "A", Author: "X", Genre: "Fiction", PublicationYear: 2001, Price: 1})
	require.NoError(t, err)

	url, err := uc.UpdateBookImage(ctx, book.ID, strings.NewReader("fake-image"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, files.url, url)
	assert.Equal(t, 1, files.uploads)

	got, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, files.url, got.Photo)
}

func TestUpdateBookImageValidation(t *testing.T) {
	uc, _, files := newBookFixture(t)
	ctx := context.Background()

	_, err := uc.UpdateBookImage(ctx, "", strings.NewReader("x"), "image/png")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.UpdateBookImage(ctx, "some-id", nil, "image/png")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	assert.Zero(t, files.uploads)
}

func TestUpdateBookImageMissingBook(t *testing.T) {
	uc, _, files := newBookFixture(t)

	_, err := uc.UpdateBookImage(context.Background(), "missing", strings.NewReader("x"), "image/png")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Zero(t, files.uploads)
}

func TestUpdateBookImageUpstreamFailureLeavesPhotoUntouched(t *testing.T) {
	uc, store, files := newBookFixture(t)
	files.err = errors.Upstream("Failed to write image to storage", nil)
	ctx := context.Background()

	book, err := uc.CreateBook(ctx, CreateBookInput{Title: "A", Author: "X", Genre: "Fiction", PublicationYear: 2001, Price: 1})
	require.NoError(t, err)

	_, err = uc.UpdateBookImage(ctx, book.ID, strings.NewReader("x"), "image/png")
	assert.True(t, errors.Is(err, "UPSTREAM_ERROR"))

	got, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Photo)
}

func TestUpdateBookImageUnconfiguredStorage(t *testing.T) {
	store := repository.NewMemoryStore()
	uc := NewBookUseCase(repository.NewMemoryBookRepository(store), service.NewUnconfiguredFileService())
	ctx := context.Background()

	book, err := uc.CreateBook(ctx, CreateBookInput{Title: "A", Author: "X", Genre: "Fiction", PublicationYear: 2001, Price: 1})
	require.NoError(t, err)

	_, err = uc.UpdateBookImage(ctx, book.ID, strings.NewReader("x"), "image/png")
	assert.True(t, errors.Is(err, "UPSTREAM_ERROR"))
}
