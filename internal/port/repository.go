package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"frigo/internal/domain"
)

// UserRepository provides access to user rows.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// IngredientRepository provides access to the canonical ingredient catalog.
type IngredientRepository interface {
	ListAll(ctx context.Context) ([]domain.Ingredient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Ingredient, error)
	ListVariants(ctx context.Context, baseID uuid.UUID) ([]domain.Ingredient, error)
	Create(ctx context.Context, ing *domain.Ingredient) error
}

// RecipeRepository persists and reads recipe aggregates.
type RecipeRepository interface {
	// CreateWithIngredients writes the recipe row and its ingredient line
	// items in one transaction, preserving sequence order.
	CreateWithIngredients(ctx context.Context, recipe *domain.Recipe, ingredients []domain.RecipeIngredient) error
	// CreateSections bulk-creates instruction sections and their steps,
	// preserving section order and step numbers. Callers decide whether a
	// failure here is fatal.
	CreateSections(ctx context.Context, recipeID uuid.UUID, sections []domain.InstructionSection) error
	GetAggregate(ctx context.Context, id uuid.UUID) (*domain.RecipeAggregate, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Recipe, int, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// ImportJobRepository persists pipeline attempts.
type ImportJobRepository interface {
	Create(ctx context.Context, job *domain.ImportJob) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ImportJob, error)
	Update(ctx context.Context, job *domain.ImportJob) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ImportJob, int, error)
	// ClaimQueued atomically claims up to limit rate-limited jobs whose
	// retry_after has elapsed, moving them back to the parsing state.
	ClaimQueued(ctx context.Context, limit int) ([]domain.ImportJob, error)
	// RequeueStale returns claimed jobs stranded in the parsing state to the
	// queue. A job is stranded when its claim is older than olderThan and no
	// pipeline is still running it, which happens when a worker dies between
	// claim and completion.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// BookRepository provides access to cookbook provenance rows.
type BookRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Create(ctx context.Context, book *domain.Book) error
}
