package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// CreateBookInput registers a physical cookbook for photo-import provenance.
type CreateBookInput struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
}

// BookService manages cookbook provenance records.
type BookService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateBookInput) (*domain.Book, error)
}

type bookService struct {
	books port.BookRepository
}

// NewBookService creates a BookService.
func NewBookService(books port.BookRepository) BookService {
	return &bookService{books: books}
}

func (s *bookService) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *bookService) Create(ctx context.Context, userID uuid.UUID, input CreateBookInput) (*domain.Book, error) {
	book := &domain.Book{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		CreatedBy: userID,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}
