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

const booksCollection = "books"

type firestoreBookRepository struct {
	client *firestore.Client
}

func NewFirestoreBookRepository(client *firestore.Client) repository.BookRepository {
	return &firestoreBookRepository{
		client: client,
	}
}

func (r *firestoreBookRepository) Create(ctx context.Context, book *entity.Book) error {
	if book.ID == "" {
		doc := r.client.Collection(booksCollection).NewDoc()
		book.ID = doc.ID
	}

	if book.Timestamp.IsZero() {
		book.Timestamp = time.Now()
	}

	_, err := r.client.Collection(booksCollection).Doc(book.ID).Set(ctx, book)
	if err != nil {
		return errors.Internal("Failed to create book", err)
	}

	return nil
}

func (r *firestoreBookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	doc, err := r.client.Collection(booksCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Book", err)
		}
		return nil, errors.Internal("Failed to get book", err)
	}

	var book entity.Book
	if err := doc.DataTo(&book); err != nil {
		return nil, errors.Internal("Failed to parse book data", err)
	}
	book.ID = doc.Ref.ID

	return &book, nil
}

func (r *firestoreBookRepository) List(ctx context.Context, query repository.BookQuery) ([]*entity.Book, error) {
	iter := r.buildQuery(query).Documents(ctx)
	defer iter.Stop()

	var books []*entity.Book
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate books", err)
		}
		var book entity.Book
		if err := doc.DataTo(&book); err != nil {
			return nil, errors.Internal("Failed to parse book data", err)
		}
		book.ID = doc.Ref.ID
		books = append(books, &book)
	}

	return books, nil
}

// buildQuery applies a composed BookQuery to the books collection. The
// predicate order is already fixed by the composer, so the resulting
// Firestore query plan is deterministic for identical filters.
func (r *firestoreBookRepository) buildQuery(query repository.BookQuery) firestore.Query {
	q := r.client.Collection(booksCollection).Query
	for _, p := range query.Predicates {
		q = q.Where(p.Field, "==", p.Value)
	}
	direction := firestore.Asc
	if query.Sort.Descending {
		direction = firestore.Desc
	}
	return q.OrderBy(query.Sort.Field, direction)
}

func (r *firestoreBookRepository) UpdatePhoto(ctx context.Context, id, photoURL string) error {
	_, err := r.client.Collection(booksCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "photo", Value: photoURL},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Book", err)
		}
		return errors.Internal("Failed to update book photo", err)
	}

	return nil
}

func (r *firestoreBookRepository) Subscribe(ctx context.Context, query repository.BookQuery, fn func([]*entity.Book)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	snapshots := r.buildQuery(query).Snapshots(subCtx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Error("Book snapshot listener stopped: %v", err)
				}
				return
			}

			fn(collectBooks(snap))
		}
	}()

	return func() {
		cancel()
		snapshots.Stop()
		<-done
	}, nil
}

func collectBooks(snap *firestore.QuerySnapshot) []*entity.Book {
	var books []*entity.Book
	docs, err := snap.Documents.GetAll()
	if err != nil {
		logger.Error("Failed to read book snapshot: %v", err)
		return books
	}
	for _, doc := range docs {
		var book entity.Book
		if err := doc.DataTo(&book); err != nil {
			logger.Warn("Skipping unparsable book document %s: %v", doc.Ref.ID, err)
			continue
		}
		book.ID = doc.Ref.ID
		books = append(books, &book)
	}
	return books
}
