package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"elib-backend/internal/domains/book/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const bookColumns = `id, title, genre, description, author, cover_image, file, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (uuid.UUID, error) {
	query := `
		INSERT INTO books (title, genre, description, author, cover_image, file)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		b.Title, b.Genre, b.Description, b.Author, b.CoverImage, b.File,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	var b model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Genre, &b.Description, &b.Author,
		&b.CoverImage, &b.File, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	return &b, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.BookWithAuthor, error) {
	query := `
		SELECT b.id, b.title, b.genre, b.description, u.name, u.email,
		       b.cover_image, b.file, b.created_at, b.updated_at
		FROM books b
		JOIN users u ON u.id = b.author
		WHERE b.author = $1`

	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("list books by author: %w", err)
	}
	defer rows.Close()

	books := []model.BookWithAuthor{}
	for rows.Next() {
		var b model.BookWithAuthor
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Genre, &b.Description,
			&b.Author.Name, &b.Author.Email,
			&b.CoverImage, &b.File, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *postgresRepository) GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error) {
	query := `
		SELECT b.id, b.title, b.genre, b.description, u.name, u.email,
		       b.cover_image, b.file, b.created_at, b.updated_at
		FROM books b
		JOIN users u ON u.id = b.author
		WHERE b.id = $1`

	var b model.BookWithAuthor
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Genre, &b.Description,
		&b.Author.Name, &b.Author.Email,
		&b.CoverImage, &b.File, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book with author: %w", err)
	}
	return &b, nil
}

func (r *postgresRepository) SearchByTitle(ctx context.Context, term string) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE title ILIKE '%' || $1 || '%'`

	rows, err := r.pool.Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET title = $1, genre = $2, description = $3,
		    cover_image = $4, file = $5, updated_at = now()
		WHERE id = $6`

	tag, err := r.pool.Exec(ctx, query,
		b.Title, b.Genre, b.Description, b.CoverImage, b.File, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func scanBooks(rows pgx.Rows) ([]model.Book, error) {
	books := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Genre, &b.Description, &b.Author,
			&b.CoverImage, &b.File, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
