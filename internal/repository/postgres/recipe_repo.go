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

type recipeRepo struct {
	db *sqlx.DB
}

// NewRecipeRepo creates a new PostgreSQL-backed RecipeRepository.
func NewRecipeRepo(db *sqlx.DB) port.RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) CreateWithIngredients(ctx context.Context, recipe *domain.Recipe, ingredients []domain.RecipeIngredient) error {
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recipeRepo.CreateWithIngredients begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (
			id, owner_id, title, description, source_author, source_url, image_url,
			servings, prep_time_min, cook_time_min, inactive_time_min, total_time_min,
			cuisine_types, meal_types, dietary_tags, cooking_methods,
			difficulty_level, difficulty_score, difficulty_factors, difficulty_reasoning,
			book_id, ownership_pending, raw_extraction, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23, $24, $25
		)`,
		recipe.ID, recipe.OwnerID, recipe.Title, recipe.Description, recipe.SourceAuthor,
		recipe.SourceURL, recipe.ImageURL,
		recipe.Servings, recipe.PrepTimeMin, recipe.CookTimeMin, recipe.InactiveTimeMin,
		recipe.TotalTimeMin,
		recipe.CuisineTypes, recipe.MealTypes, recipe.DietaryTags, recipe.CookingMethods,
		recipe.DifficultyLevel, recipe.DifficultyScore, recipe.DifficultyFactors,
		recipe.DifficultyReasoning,
		recipe.BookID, recipe.OwnershipPending, recipe.RawExtraction,
		recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("recipeRepo.CreateWithIngredients recipe: %w", err)
	}

	for i := range ingredients {
		ing := &ingredients[i]
		if ing.ID == uuid.Nil {
			ing.ID = uuid.New()
		}
		ing.RecipeID = recipe.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (
				id, recipe_id, ingredient_id, original_text, quantity_amount,
				quantity_unit, ingredient_name, preparation, sequence_order,
				is_optional, needs_review
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			ing.ID, ing.RecipeID, ing.IngredientID, ing.OriginalText, ing.QuantityAmount,
			ing.QuantityUnit, ing.IngredientName, ing.Preparation, ing.SequenceOrder,
			ing.IsOptional, ing.NeedsReview)
		if err != nil {
			return fmt.Errorf("recipeRepo.CreateWithIngredients item %d: %w", ing.SequenceOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recipeRepo.CreateWithIngredients commit: %w", err)
	}
	return nil
}

func (r *recipeRepo) CreateSections(ctx context.Context, recipeID uuid.UUID, sections []domain.InstructionSection) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recipeRepo.CreateSections begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range sections {
		sec := &sections[i]
		if sec.ID == uuid.Nil {
			sec.ID = uuid.New()
		}
		sec.RecipeID = recipeID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO instruction_sections (id, recipe_id, title, description, section_order, estimated_time_min)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			sec.ID, sec.RecipeID, sec.Title, sec.Description, sec.SectionOrder, sec.EstimatedTimeMin)
		if err != nil {
			return fmt.Errorf("recipeRepo.CreateSections section %d: %w", sec.SectionOrder, err)
		}

		for j := range sec.Steps {
			step := &sec.Steps[j]
			if step.ID == uuid.Nil {
				step.ID = uuid.New()
			}
			step.SectionID = sec.ID
			_, err = tx.ExecContext(ctx,
				`INSERT INTO instruction_steps (id, section_id, step_number, instruction, is_optional, is_time_sensitive)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				step.ID, step.SectionID, step.StepNumber, step.Instruction,
				step.IsOptional, step.IsTimeSensitive)
			if err != nil {
				return fmt.Errorf("recipeRepo.CreateSections step %d.%d: %w", sec.SectionOrder, step.StepNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recipeRepo.CreateSections commit: %w", err)
	}
	return nil
}

func (r *recipeRepo) GetAggregate(ctx context.Context, id uuid.UUID) (*domain.RecipeAggregate, error) {
	var recipe domain.Recipe
	err := r.db.GetContext(ctx, &recipe, "SELECT * FROM recipes WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("recipeRepo.GetAggregate: %w", err)
	}

	agg := &domain.RecipeAggregate{Recipe: recipe}

	err = r.db.SelectContext(ctx, &agg.Ingredients,
		"SELECT * FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY sequence_order", id)
	if err != nil {
		return nil, fmt.Errorf("recipeRepo.GetAggregate ingredients: %w", err)
	}

	err = r.db.SelectContext(ctx, &agg.Sections,
		"SELECT * FROM instruction_sections WHERE recipe_id = $1 ORDER BY section_order", id)
	if err != nil {
		return nil, fmt.Errorf("recipeRepo.GetAggregate sections: %w", err)
	}

	for i := range agg.Sections {
		err = r.db.SelectContext(ctx, &agg.Sections[i].Steps,
			"SELECT * FROM instruction_steps WHERE section_id = $1 ORDER BY step_number",
			agg.Sections[i].ID)
		if err != nil {
			return nil, fmt.Errorf("recipeRepo.GetAggregate steps: %w", err)
		}
	}
	return agg, nil
}

func (r *recipeRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Recipe, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM recipes WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("recipeRepo.ListByOwner count: %w", err)
	}

	var recipes []domain.Recipe
	err = r.db.SelectContext(ctx, &recipes,
		`SELECT * FROM recipes WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("recipeRepo.ListByOwner: %w", err)
	}
	return recipes, total, nil
}

func (r *recipeRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM recipes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("recipeRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("recipeRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}
