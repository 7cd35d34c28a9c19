package repository

import (
	"context"

	"github.com/google/uuid"

	"elib-backend/internal/domains/book/model"
)

// RepositoryInterface is the book record store.
type RepositoryInterface interface {
	// Create persists a new record and returns the store-generated id.
	Create(ctx context.Context, b *model.Book) (uuid.UUID, error)

	// GetByID returns model.ErrBookNotFound when no record matches.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	ListAll(ctx context.Context) ([]model.Book, error)

	// ListByAuthor inlines the restricted author view for each record.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.BookWithAuthor, error)

	// GetWithAuthor is the single-record join; an empty result is
	// model.ErrBookNotFound.
	GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error)

	// SearchByTitle matches titles case-insensitively by substring.
	SearchByTitle(ctx context.Context, term string) ([]model.Book, error)

	Update(ctx context.Context, b *model.Book) error

	Delete(ctx context.Context, id uuid.UUID) error
}
