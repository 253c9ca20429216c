package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"bookshelf/internal/domain/repository"
	"bookshelf/internal/usecase"
	"bookshelf/pkg/errors"
	"bookshelf/pkg/response"
)

const maxImageSize = 5 * 1024 * 1024

type BookHandler struct {
	bookUseCase *usecase.BookUseCase
}

func NewBookHandler(bookUseCase *usecase.BookUseCase) *BookHandler {
	return &BookHandler{
		bookUseCase: bookUseCase,
	}
}

type createBookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Genre           string `json:"genre" validate:"required"`
	PublicationYear int    `json:"publication_year" validate:"required,min=1000,max=2100"`
	Price           int    `json:"price" validate:"required,min=1,max=4"`
	Photo           string `json:"photo" validate:"omitempty,url"`
}

func (h *BookHandler) CreateBook(c echo.Context) error {
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	book, err := h.bookUseCase.CreateBook(c.Request().Context(), usecase.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Price:           req.Price,
		Photo:           req.Photo,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, book)
}

func (h *BookHandler) GetBook(c echo.Context) error {
	book, err := h.bookUseCase.GetBookByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, book)
}

func (h *BookHandler) ListBooks(c echo.Context) error {
	books, err := h.bookUseCase.ListBooks(c.Request().Context(), bookFilterFromQuery(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, books)
}

// bookFilterFromQuery mirrors the listing page's filter bar: all fields
// optional, price given as a "$" token.
func bookFilterFromQuery(c echo.Context) repository.BookFilter {
	year, _ := strconv.Atoi(c.QueryParam("publicationYear"))
	return repository.BookFilter{
		Genre:           c.QueryParam("genre"),
		Author:          c.QueryParam("author"),
		PublicationYear: year,
		Price:           c.QueryParam("price"),
		Sort:            c.QueryParam("sort"),
	}
}

// UploadImage stores the uploaded cover image and rewrites the book's
// photo URL. Blob-store failures degrade to an error payload, they never
// abort with a crash or leave a half-written book.
func (h *BookHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.Validation("A valid image has not been provided", err))
	}

	if file.Size > maxImageSize {
		return response.Error(c, errors.Validation("Image exceeds the 5MB size limit", nil))
	}

	fileType := file.Header.Get("Content-Type")
	if !isAllowedImageType(fileType) {
		return response.Error(c, errors.Validation("Image type not supported", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded image", err))
	}
	defer src.Close()

	publicURL, err := h.bookUseCase.UpdateBookImage(c.Request().Context(), c.Param("id"), src, fileType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"photo": publicURL,
	})
}

func isAllowedImageType(fileType string) bool {
	switch fileType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
