package usecase

import (
	"context"
	"io"

	"bookshelf/internal/domain/entity"
	"bookshelf/internal/domain/repository"
	"bookshelf/internal/domain/service"
	"bookshelf/pkg/errors"
	"bookshelf/pkg/logger"
)

type BookUseCase struct {
	bookRepo    repository.BookRepository
	fileService service.FileUploadService
}

func NewBookUseCase(bookRepo repository.BookRepository, fileService service.FileUploadService) *BookUseCase {
	return &BookUseCase{
		bookRepo:    bookRepo,
		fileService: fileService,
	}
}

type CreateBookInput struct {
	Title           string
	Author          string
	Genre           string
	PublicationYear int
	Price           int
	Photo           string
}

func (uc *BookUseCase) CreateBook(ctx context.Context, input CreateBookInput) (*entity.Book, error) {
	// Rollup fields start at zero; only the review transaction moves them.
	book := &entity.Book{
		Title:           input.Title,
		Author:          input.Author,
		Genre:           input.Genre,
		PublicationYear: input.PublicationYear,
		Price:           input.Price,
		Photo:           input.Photo,
	}

	if err := uc.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

func (uc *BookUseCase) GetBookByID(ctx context.Context, id string) (*entity.Book, error) {
	if id == "" {
		return nil, errors.Validation("No book ID has been provided", nil)
	}
	return uc.bookRepo.GetByID(ctx, id)
}

func (uc *BookUseCase) ListBooks(ctx context.Context, filter repository.BookFilter) ([]*entity.Book, error) {
	return uc.bookRepo.List(ctx, repository.BuildBookQuery(filter))
}

// SubscribeBooks registers fn for live updates of the filtered listing.
func (uc *BookUseCase) SubscribeBooks(ctx context.Context, filter repository.BookFilter, fn func([]*entity.Book)) (func(), error) {
	return uc.bookRepo.Subscribe(ctx, repository.BuildBookQuery(filter), fn)
}

// UpdateBookImage uploads the image to the blob store and rewrites the
// book's photo field with the returned public URL. The photo write is a
// plain update; it does not touch the rating rollup.
func (uc *BookUseCase) UpdateBookImage(ctx context.Context, bookID string, image io.Reader, contentType string) (string, error) {
	if bookID == "" {
		return "", errors.Validation("No book ID has been provided", nil)
	}
	if image == nil {
		return "", errors.Validation("A valid image has not been provided", nil)
	}

	if _, err := uc.bookRepo.GetByID(ctx, bookID); err != nil {
		return "", err
	}

	publicURL, err := uc.fileService.UploadFile(ctx, image, contentType, "images/"+bookID, true)
	if err != nil {
		logger.Error("Image upload failed for book %s: %v", bookID, err)
		if errors.Is(err, "UPSTREAM_ERROR") {
			return "", err
		}
		return "", errors.Upstream("Failed to store image", err)
	}

	if err := uc.bookRepo.UpdatePhoto(ctx, bookID, publicURL); err != nil {
		return "", err
	}

	return publicURL, nil
}
