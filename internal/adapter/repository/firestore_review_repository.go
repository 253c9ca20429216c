package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bookshelf/internal/domain/entity"
	"bookshelf/internal/domain/repository"
	"bookshelf/pkg/errors"
	"bookshelf/pkg/logger"
)

const ratingsCollection = "ratings"

type firestoreReviewRepository struct {
	client      *firestore.Client
	maxAttempts int
}

func NewFirestoreReviewRepository(client *firestore.Client, maxAttempts int) repository.ReviewRepository {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &firestoreReviewRepository{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

// AddWithRating runs the rating transaction: read the book snapshot,
// compute the new rollup, update the book and create the rating child
// document together. Firestore replays the whole body on write conflict,
// so the body writes only through the transaction and touches nothing
// external. Conflict retries beyond maxAttempts surface as CONFLICT.
func (r *firestoreReviewRepository) AddWithRating(ctx context.Context, bookID string, review *entity.Review) error {
	bookRef := r.client.Collection(booksCollection).Doc(bookID)
	reviewRef := bookRef.Collection(ratingsCollection).NewDoc()

	var stored entity.Review
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(bookRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Book", err)
			}
			return err
		}

		var book entity.Book
		if err := doc.DataTo(&book); err != nil {
			return errors.Internal("Failed to parse book data", err)
		}

		numRatings, sumRating, avgRating := book.ApplyRating(review.Rating)
		if err := tx.Update(bookRef, []firestore.Update{
			{Path: "numRatings", Value: numRatings},
			{Path: "sumRating", Value: sumRating},
			{Path: "avgRating", Value: avgRating},
		}); err != nil {
			return err
		}

		stored = *review
		stored.ID = reviewRef.ID
		stored.Timestamp = time.Now()
		return tx.Create(reviewRef, stored)
	}, firestore.MaxAttempts(r.maxAttempts))

	if err != nil {
		if errors.Is(err, "NOT_FOUND") || errors.Is(err, "INTERNAL_ERROR") {
			return err
		}
		if status.Code(err) == codes.Aborted {
			return errors.Conflict("Too many concurrent reviews, please try again", err)
		}
		return errors.Internal("Failed to add review", err)
	}

	*review = stored
	return nil
}

func (r *firestoreReviewRepository) ListByBookID(ctx context.Context, bookID string) ([]*entity.Review, error) {
	bookRef := r.client.Collection(booksCollection).Doc(bookID)
	if _, err := bookRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Book", err)
		}
		return nil, errors.Internal("Failed to get book", err)
	}

	iter := r.ratingsQuery(bookID).Documents(ctx)
	defer iter.Stop()

	var reviews []*entity.Review
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate reviews", err)
		}
		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			return nil, errors.Internal("Failed to parse review data", err)
		}
		review.ID = doc.Ref.ID
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

func (r *firestoreReviewRepository) ratingsQuery(bookID string) firestore.Query {
	return r.client.Collection(booksCollection).Doc(bookID).
		Collection(ratingsCollection).
		OrderBy("timestamp", firestore.Desc)
}

func (r *firestoreReviewRepository) Subscribe(ctx context.Context, bookID string, fn func([]*entity.Review)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	snapshots := r.ratingsQuery(bookID).Snapshots(subCtx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Error("Review snapshot listener stopped: %v", err)
				}
				return
			}
			fn(collectReviews(snap))
		}
	}()

	return func() {
		cancel()
		snapshots.Stop()
		<-done
	}, nil
}

func collectReviews(snap *firestore.QuerySnapshot) []*entity.Review {
	var reviews []*entity.Review
	docs, err := snap.Documents.GetAll()
	if err != nil {
		logger.Error("Failed to read review snapshot: %v", err)
		return reviews
	}
	for _, doc := range docs {
		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			logger.Warn("Skipping unparsable review document %s: %v", doc.Ref.ID, err)
			continue
		}
		review.ID = doc.Ref.ID
		reviews = append(reviews, &review)
	}
	return reviews
}
