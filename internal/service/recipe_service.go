package service

import (
	"context"

	"github.com/google/uuid"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// RecipeService exposes read and delete operations over saved recipes.
type RecipeService interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.RecipeAggregate, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Recipe, int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type recipeService struct {
	recipes port.RecipeRepository
}

// NewRecipeService creates a RecipeService.
func NewRecipeService(recipes port.RecipeRepository) RecipeService {
	return &recipeService{recipes: recipes}
}

func (s *recipeService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.RecipeAggregate, error) {
	agg, err := s.recipes.GetAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if agg.Recipe.OwnerID != userID {
		return nil, domain.ErrRecipeNotFound
	}
	return agg, nil
}

func (s *recipeService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Recipe, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.recipes.ListByOwner(ctx, userID, offset, limit)
}

func (s *recipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.recipes.Delete(ctx, userID, id)
}
