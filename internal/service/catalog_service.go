package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// CreateIngredientInput creates a catalog entry directly.
type CreateIngredientInput struct {
	Name       string     `json:"name" binding:"required"`
	PluralName string     `json:"plural_name"`
	Family     string     `json:"family"`
	IsBase     bool       `json:"is_base"`
	ParentID   *uuid.UUID `json:"parent_id"`
}

// CatalogService exposes the canonical ingredient catalog.
type CatalogService interface {
	ListAll(ctx context.Context) ([]domain.Ingredient, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Ingredient, error)
	ListVariants(ctx context.Context, baseID uuid.UUID) ([]domain.Ingredient, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateIngredientInput) (*domain.Ingredient, error)
}

type catalogService struct {
	ingredients port.IngredientRepository
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(ingredients port.IngredientRepository) CatalogService {
	return &catalogService{ingredients: ingredients}
}

func (s *catalogService) ListAll(ctx context.Context) ([]domain.Ingredient, error) {
	return s.ingredients.ListAll(ctx)
}

func (s *catalogService) Search(ctx context.Context, query string, limit int) ([]domain.Ingredient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Ingredient{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.ingredients.Search(ctx, query, limit)
}

func (s *catalogService) ListVariants(ctx context.Context, baseID uuid.UUID) ([]domain.Ingredient, error) {
	if _, err := s.ingredients.GetByID(ctx, baseID); err != nil {
		return nil, err
	}
	return s.ingredients.ListVariants(ctx, baseID)
}

func (s *catalogService) Create(ctx context.Context, userID uuid.UUID, input CreateIngredientInput) (*domain.Ingredient, error) {
	if input.ParentID != nil {
		if _, err := s.ingredients.GetByID(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}
	ing := &domain.Ingredient{
		ID:         uuid.New(),
		Name:       strings.ToLower(strings.TrimSpace(input.Name)),
		PluralName: strings.ToLower(strings.TrimSpace(input.PluralName)),
		Family:     input.Family,
		IsBase:     input.IsBase,
		ParentID:   input.ParentID,
		CreatedBy:  &userID,
	}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}
