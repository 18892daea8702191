package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"frigo/internal/domain"
	"frigo/internal/port"
)

type bookRepo struct {
	db *sqlx.DB
}

// NewBookRepo creates a new PostgreSQL-backed BookRepository.
func NewBookRepo(db *sqlx.DB) port.BookRepository {
	return &bookRepo{db: db}
}

func (r *bookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	var book domain.Book
	err := r.db.GetContext(ctx, &book, "SELECT * FROM books WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("bookRepo.GetByID: %w", err)
	}
	return &book, nil
}

func (r *bookRepo) Create(ctx context.Context, book *domain.Book) error {
	book.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		book.ID, book.Title, book.Author, book.CreatedBy, book.CreatedAt)
	if err != nil {
		return fmt.Errorf("bookRepo.Create: %w", err)
	}
	return nil
}
