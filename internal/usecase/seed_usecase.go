package usecase

import (
	"context"
	"fmt"
	"math/rand"

	"bookshelf/internal/domain/entity"
	"bookshelf/internal/domain/repository"
	"bookshelf/pkg/logger"
)

// SeedUseCase populates the store with sample books and reviews for
// development. Reviews go through the rating transaction so the seeded
// rollup fields stay consistent with the review children.
type SeedUseCase struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
}

func NewSeedUseCase(bookRepo repository.BookRepository, reviewRepo repository.ReviewRepository) *SeedUseCase {
	return &SeedUseCase{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
	}
}

var (
	seedGenres  = []string{"Fiction", "Mystery", "Science Fiction", "Biography", "Fantasy"}
	seedAuthors = []string{"James Chen", "Maria Garcia", "Aisha Patel", "Tom Becker", "Lena Fischer"}
	seedTitles  = []string{
		"The Silent Harbor", "Paper Cities", "A Study in Amber",
		"The Last Cartographer", "Midnight at the Archive",
	}
	seedReviews = []struct {
		rating int
		text   string
	}{
		{5, "Could not put it down, finished it in one sitting."},
		{4, "A strong story with a slightly rushed ending."},
		{3, "Decent read, though the middle chapters drag."},
		{2, "The premise promised more than the book delivered."},
		{5, "Beautifully written, I will be rereading this one."},
	}
)

// Seed creates count sample books, each with a random number of reviews.
func (uc *SeedUseCase) Seed(ctx context.Context, count int) ([]*entity.Book, error) {
	if count <= 0 {
		count = 5
	}

	var books []*entity.Book
	for i := 0; i < count; i++ {
		book := &entity.Book{
			Title:           seedTitles[i%len(seedTitles)],
			Author:          seedAuthors[rand.Intn(len(seedAuthors))],
			Genre:           seedGenres[rand.Intn(len(seedGenres))],
			PublicationYear: 1990 + rand.Intn(35),
			Price:           1 + rand.Intn(4),
		}
		if i >= len(seedTitles) {
			book.Title = fmt.Sprintf("%s, Vol. %d", book.Title, i/len(seedTitles)+1)
		}

		if err := uc.bookRepo.Create(ctx, book); err != nil {
			return nil, err
		}

		for j := 0; j < rand.Intn(6); j++ {
			sample := seedReviews[rand.Intn(len(seedReviews))]
			review := &entity.Review{
				Rating: sample.rating,
				Text:   sample.text,
				UserID: fmt.Sprintf("user-%d", rand.Intn(10000)),
			}
			if err := uc.reviewRepo.AddWithRating(ctx, book.ID, review); err != nil {
				logger.Warn("Failed to seed review for book %s: %v", book.ID, err)
			}
		}

		// Re-read so the returned books carry the seeded rollups.
		seeded, err := uc.bookRepo.GetByID(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		books = append(books, seeded)
	}

	logger.Info("Seeded %d books", len(books))
	return books, nil
}
