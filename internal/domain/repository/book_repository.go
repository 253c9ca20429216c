package repository

import (
	"context"

	"bookshelf/internal/domain/entity"
)

// BookRepository is the store for books and their rating rollups.
// UpdatePhoto is a plain field write; the rollup fields are only touched
// by ReviewRepository.AddWithRating.
type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	List(ctx context.Context, query BookQuery) ([]*entity.Book, error)
	UpdatePhoto(ctx context.Context, id, photoURL string) error

	// Subscribe registers fn to receive the filtered book list after
	// every change. The returned cancel func deregisters; fn is not
	// called again once cancel returns.
	Subscribe(ctx context.Context, query BookQuery, fn func([]*entity.Book)) (func(), error)
}
