package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"frigo/internal/domain"
	"frigo/internal/port"
)

type ingredientRepo struct {
	db *sqlx.DB
}

// NewIngredientRepo creates a new PostgreSQL-backed IngredientRepository.
func NewIngredientRepo(db *sqlx.DB) port.IngredientRepository {
	return &ingredientRepo{db: db}
}

func (r *ingredientRepo) ListAll(ctx context.Context) ([]domain.Ingredient, error) {
	var rows []domain.Ingredient
	err := r.db.SelectContext(ctx, &rows, "SELECT * FROM ingredients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ingredientRepo.ListAll: %w", err)
	}
	return rows, nil
}

func (r *ingredientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := r.db.GetContext(ctx, &ing, "SELECT * FROM ingredients WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIngredientNotFound
		}
		return nil, fmt.Errorf("ingredientRepo.GetByID: %w", err)
	}
	return &ing, nil
}

func (r *ingredientRepo) Search(ctx context.Context, query string, limit int) ([]domain.Ingredient, error) {
	var rows []domain.Ingredient
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM ingredients
		 WHERE name ILIKE '%' || $1 || '%' OR plural_name ILIKE '%' || $1 || '%'
		 ORDER BY is_base DESC, name LIMIT $2`,
		strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("ingredientRepo.Search: %w", err)
	}
	return rows, nil
}

func (r *ingredientRepo) ListVariants(ctx context.Context, baseID uuid.UUID) ([]domain.Ingredient, error) {
	var rows []domain.Ingredient
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM ingredients WHERE parent_id = $1 ORDER BY name", baseID)
	if err != nil {
		return nil, fmt.Errorf("ingredientRepo.ListVariants: %w", err)
	}
	return rows, nil
}

func (r *ingredientRepo) Create(ctx context.Context, ing *domain.Ingredient) error {
	now := time.Now().UTC()
	ing.CreatedAt = now
	ing.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingredients (id, name, plural_name, family, is_base, parent_id, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ing.ID, ing.Name, ing.PluralName, ing.Family, ing.IsBase, ing.ParentID,
		ing.CreatedBy, ing.CreatedAt, ing.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateIngredient
		}
		return fmt.Errorf("ingredientRepo.Create: %w", err)
	}
	return nil
}
