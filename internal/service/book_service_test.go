package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frigo/internal/domain"
)

type memBookRepo struct {
	books map[uuid.UUID]domain.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{books: map[uuid.UUID]domain.Book{}}
}

func (m *memBookRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return &book, nil
}

func (m *memBookRepo) Create(_ context.Context, book *domain.Book) error {
	m.books[book.ID] = *book
	return nil
}

func TestBookService_CreateTrimsAndRecordsOwner(t *testing.T) {
	repo := newMemBookRepo()
	svc := NewBookService(repo)
	userID := uuid.New()

	book, err := svc.Create(context.Background(), userID, CreateBookInput{
		Title:  "  The Silver Spoon ",
		Author: " Phaidon ",
	})
	require.NoError(t, err)
	assert.Equal(t, "The Silver Spoon", book.Title)
	assert.Equal(t, "Phaidon", book.Author)
	assert.Equal(t, userID, book.CreatedBy)

	got, err := svc.Get(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)
}

func TestBookService_GetUnknownID(t *testing.T) {
	svc := NewBookService(newMemBookRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}
