package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookshelf/internal/domain/entity"
	"bookshelf/internal/domain/repository"
	"bookshelf/pkg/errors"
)

const defaultMaxAttempts = 5

// MemoryStore is an in-memory backend implementing both BookRepository
// and ReviewRepository. It is used when no Firebase project is
// configured and by the concurrency tests. The review transaction is an
// optimistic compare-and-swap loop: read a versioned snapshot, compute
// the new rollup, commit only if the version is unchanged, retry on
// mismatch up to MaxAttempts.
type MemoryStore struct {
	mu      sync.RWMutex
	books   map[string]*bookDoc
	subs    map[int]*subscriber
	nextSub int

	// MaxAttempts bounds the CAS retry loop in AddWithRating.
	MaxAttempts int
}

type bookDoc struct {
	book    entity.Book
	version uint64
	reviews []entity.Review
}

type subscriber struct {
	bookID string // empty for book-list subscriptions
	query  repository.BookQuery
	onBook func([]*entity.Book)
	onRev  func([]*entity.Review)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:       make(map[string]*bookDoc),
		subs:        make(map[int]*subscriber),
		MaxAttempts: defaultMaxAttempts,
	}
}

// NewMemoryBookRepository exposes the store as a BookRepository.
func NewMemoryBookRepository(s *MemoryStore) repository.BookRepository {
	return s
}

// NewMemoryReviewRepository exposes the store as a ReviewRepository.
// Both repositories share the same store so the review transaction sees
// the books it aggregates into.
func NewMemoryReviewRepository(s *MemoryStore) repository.ReviewRepository {
	return &memoryReviewRepository{store: s}
}

type memoryReviewRepository struct {
	store *MemoryStore
}

func (r *memoryReviewRepository) AddWithRating(ctx context.Context, bookID string, review *entity.Review) error {
	return r.store.AddWithRating(ctx, bookID, review)
}

func (r *memoryReviewRepository) ListByBookID(ctx context.Context, bookID string) ([]*entity.Review, error) {
	return r.store.ListByBookID(ctx, bookID)
}

func (r *memoryReviewRepository) Subscribe(ctx context.Context, bookID string, fn func([]*entity.Review)) (func(), error) {
	return r.store.SubscribeReviews(ctx, bookID, fn)
}

func (s *MemoryStore) Create(ctx context.Context, book *entity.Book) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if book.Timestamp.IsZero() {
		book.Timestamp = time.Now()
	}

	s.mu.Lock()
	if _, exists := s.books[book.ID]; exists {
		s.mu.Unlock()
		return errors.Conflict("Book already exists", nil)
	}
	s.books[book.ID] = &bookDoc{book: *book}
	s.mu.Unlock()

	s.notify(book.ID)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.books[id]
	if !ok {
		return nil, errors.NotFound("Book", nil)
	}
	book := doc.book
	return &book, nil
}

func (s *MemoryStore) List(ctx context.Context, query repository.BookQuery) ([]*entity.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(query), nil
}

func (s *MemoryStore) listLocked(query repository.BookQuery) []*entity.Book {
	var books []*entity.Book
	for _, doc := range s.books {
		if matches(&doc.book, query.Predicates) {
			book := doc.book
			books = append(books, &book)
		}
	}

	sort.Slice(books, func(i, j int) bool {
		a, b := sortKey(books[i], query.Sort.Field), sortKey(books[j], query.Sort.Field)
		if a != b {
			if query.Sort.Descending {
				return a > b
			}
			return a < b
		}
		// Stable tie-break so identical queries return identical order.
		return books[i].ID < books[j].ID
	})

	return books
}

func matches(book *entity.Book, predicates []repository.Predicate) bool {
	for _, p := range predicates {
		switch p.Field {
		case "genre":
			if book.Genre != p.Value {
				return false
			}
		case "author":
			if book.Author != p.Value {
				return false
			}
		case "publicationYear":
			if book.PublicationYear != p.Value {
				return false
			}
		case "price":
			if book.Price != p.Value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sortKey(book *entity.Book, field string) float64 {
	if field == "numRatings" {
		return float64(book.NumRatings)
	}
	return book.AvgRating
}

func (s *MemoryStore) UpdatePhoto(ctx context.Context, id, photoURL string) error {
	s.mu.Lock()
	doc, ok := s.books[id]
	if !ok {
		s.mu.Unlock()
		return errors.NotFound("Book", nil)
	}
	doc.book.Photo = photoURL
	s.mu.Unlock()

	s.notify(id)
	return nil
}

// AddWithRating appends a review and updates the parent rollup fields
// atomically. The read-compute phase runs outside the write lock; the
// commit is conditioned on the snapshot version still being current.
func (s *MemoryStore) AddWithRating(ctx context.Context, bookID string, review *entity.Review) error {
	for attempt := 0; attempt < s.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Internal("Transaction cancelled", err)
		}

		s.mu.RLock()
		doc, ok := s.books[bookID]
		if !ok {
			s.mu.RUnlock()
			return errors.NotFound("Book", nil)
		}
		snapshot := doc.book
		version := doc.version
		s.mu.RUnlock()

		numRatings, sumRating, avgRating := snapshot.ApplyRating(review.Rating)

		stored := *review
		stored.ID = uuid.New().String()
		stored.Timestamp = time.Now()

		s.mu.Lock()
		doc, ok = s.books[bookID]
		if !ok {
			s.mu.Unlock()
			return errors.NotFound("Book", nil)
		}
		if doc.version != version {
			s.mu.Unlock()
			continue
		}
		doc.book.NumRatings = numRatings
		doc.book.SumRating = sumRating
		doc.book.AvgRating = avgRating
		doc.reviews = append(doc.reviews, stored)
		doc.version++
		s.mu.Unlock()

		*review = stored
		s.notify(bookID)
		return nil
	}

	return errors.Conflict("Too many concurrent reviews, please try again", nil)
}

func (s *MemoryStore) ListByBookID(ctx context.Context, bookID string) ([]*entity.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.books[bookID]
	if !ok {
		return nil, errors.NotFound("Book", nil)
	}
	return reviewsNewestFirst(doc), nil
}

func reviewsNewestFirst(doc *bookDoc) []*entity.Review {
	// Walk backwards so reviews with equal timestamps still come out
	// latest-submission first.
	reviews := make([]*entity.Review, 0, len(doc.reviews))
	for i := len(doc.reviews) - 1; i >= 0; i-- {
		review := doc.reviews[i]
		reviews = append(reviews, &review)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Timestamp.After(reviews[j].Timestamp)
	})
	return reviews
}

func (s *MemoryStore) Subscribe(ctx context.Context, query repository.BookQuery, fn func([]*entity.Book)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &subscriber{query: query, onBook: fn}
	s.mu.Unlock()

	return func() { s.unsubscribe(id) }, nil
}

// SubscribeReviews registers fn for one book's review list. It backs
// ReviewRepository.Subscribe; the method name differs from the book
// subscription because MemoryStore implements both interfaces.
func (s *MemoryStore) SubscribeReviews(ctx context.Context, bookID string, fn func([]*entity.Review)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &subscriber{bookID: bookID, onRev: fn}
	s.mu.Unlock()

	return func() { s.unsubscribe(id) }, nil
}

func (s *MemoryStore) unsubscribe(id int) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// notify delivers current state to matching subscribers. Callbacks run
// synchronously under the read lock, so a completed unsubscribe (which
// takes the write lock) guarantees no further callbacks.
func (s *MemoryStore) notify(bookID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if sub.onBook != nil {
			sub.onBook(s.listLocked(sub.query))
		}
		if sub.onRev != nil && sub.bookID == bookID {
			if doc, ok := s.books[bookID]; ok {
				sub.onRev(reviewsNewestFirst(doc))
			}
		}
	}
}
