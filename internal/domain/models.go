package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StringList is a []string stored as a JSONB column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
}

// User represents an authenticated Frigo user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Ingredient is a row in the canonical ingredient catalog. Base ingredients
// (IsBase) may have registered variants pointing back via ParentID, e.g.
// "pepper" with variants "bell pepper" and "black pepper".
type Ingredient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	PluralName string     `db:"plural_name" json:"plural_name"`
	Family     string     `db:"family" json:"family"`
	IsBase     bool       `db:"is_base" json:"is_base"`
	ParentID   *uuid.UUID `db:"parent_id" json:"parent_id"`
	CreatedBy  *uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Book represents a physical cookbook used as photo-import provenance.
type Book struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Recipe is the persisted recipe row. Ingredient line items and instruction
// sections hang off it as child rows; deleting a recipe cascades to both.
type Recipe struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	OwnerID             uuid.UUID       `db:"owner_id" json:"owner_id"`
	Title               string          `db:"title" json:"title"`
	Description         string          `db:"description" json:"description"`
	SourceAuthor        string          `db:"source_author" json:"source_author"`
	SourceURL           string          `db:"source_url" json:"source_url"`
	ImageURL            string          `db:"image_url" json:"image_url"`
	Servings            *int            `db:"servings" json:"servings"`
	PrepTimeMin         *int            `db:"prep_time_min" json:"prep_time_min"`
	CookTimeMin         *int            `db:"cook_time_min" json:"cook_time_min"`
	InactiveTimeMin     *int            `db:"inactive_time_min" json:"inactive_time_min"`
	TotalTimeMin        *int            `db:"total_time_min" json:"total_time_min"`
	CuisineTypes        StringList      `db:"cuisine_types" json:"cuisine_types"`
	MealTypes           StringList      `db:"meal_types" json:"meal_types"`
	DietaryTags         StringList      `db:"dietary_tags" json:"dietary_tags"`
	CookingMethods      StringList      `db:"cooking_methods" json:"cooking_methods"`
	DifficultyLevel     DifficultyLevel `db:"difficulty_level" json:"difficulty_level"`
	DifficultyScore     int             `db:"difficulty_score" json:"difficulty_score"`
	DifficultyFactors   StringList      `db:"difficulty_factors" json:"difficulty_factors"`
	DifficultyReasoning string          `db:"difficulty_reasoning" json:"difficulty_reasoning"`
	BookID              *uuid.UUID      `db:"book_id" json:"book_id"`
	OwnershipPending    bool            `db:"ownership_pending" json:"ownership_pending"`
	RawExtraction       json.RawMessage `db:"raw_extraction" json:"raw_extraction,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// RecipeIngredient is a persisted ingredient line item belonging to a recipe.
type RecipeIngredient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RecipeID       uuid.UUID  `db:"recipe_id" json:"recipe_id"`
	IngredientID   *uuid.UUID `db:"ingredient_id" json:"ingredient_id"`
	OriginalText   string     `db:"original_text" json:"original_text"`
	QuantityAmount *float64   `db:"quantity_amount" json:"quantity_amount"`
	QuantityUnit   string     `db:"quantity_unit" json:"quantity_unit"`
	IngredientName string     `db:"ingredient_name" json:"ingredient_name"`
	Preparation    string     `db:"preparation" json:"preparation"`
	SequenceOrder  int        `db:"sequence_order" json:"sequence_order"`
	IsOptional     bool       `db:"is_optional" json:"is_optional"`
	NeedsReview    bool       `db:"needs_review" json:"needs_review"`
}

// InstructionSection is a titled, ordered group of recipe steps.
type InstructionSection struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	RecipeID         uuid.UUID         `db:"recipe_id" json:"recipe_id"`
	Title            string            `db:"title" json:"title"`
	Description      string            `db:"description" json:"description"`
	SectionOrder     int               `db:"section_order" json:"section_order"`
	EstimatedTimeMin *int              `db:"estimated_time_min" json:"estimated_time_min"`
	Steps            []InstructionStep `db:"-" json:"steps"`
}

// InstructionStep is a single ordered step within an instruction section.
type InstructionStep struct {
	ID              uuid.UUID `db:"id" json:"id"`
	SectionID       uuid.UUID `db:"section_id" json:"section_id"`
	StepNumber      int       `db:"step_number" json:"step_number"`
	Instruction     string    `db:"instruction" json:"instruction"`
	IsOptional      bool      `db:"is_optional" json:"is_optional"`
	IsTimeSensitive bool      `db:"is_time_sensitive" json:"is_time_sensitive"`
}

// RecipeAggregate is a recipe with its ordered children, as returned by reads.
type RecipeAggregate struct {
	Recipe      Recipe               `json:"recipe"`
	Ingredients []RecipeIngredient   `json:"ingredients"`
	Sections    []InstructionSection `json:"sections"`
}

// ImportJob tracks one recipe-ingestion attempt through the pipeline. The job
// row is the single source of truth for the attempt's state; each stage writes
// its output back before the next stage runs.
type ImportJob struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	UserID           uuid.UUID       `db:"user_id" json:"user_id"`
	SourceType       SourceType      `db:"source_type" json:"source_type"`
	SourceURL        string          `db:"source_url" json:"source_url"`
	PhotoBucket      string          `db:"photo_bucket" json:"-"`
	PhotoKey         string          `db:"photo_key" json:"photo_key,omitempty"`
	PhotoContentType string          `db:"photo_content_type" json:"-"`
	PhotoURL         string          `db:"-" json:"photo_url,omitempty"`
	BookID           *uuid.UUID      `db:"book_id" json:"book_id"`
	State            ImportState     `db:"state" json:"state"`
	Warning          string          `db:"warning" json:"warning,omitempty"`
	Standardized     json.RawMessage `db:"standardized" json:"standardized,omitempty"`
	Extracted        json.RawMessage `db:"extracted" json:"extracted,omitempty"`
	Matches          json.RawMessage `db:"matches" json:"matches,omitempty"`
	FinalTitle       string          `db:"final_title" json:"final_title"`
	ErrorCode        string          `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage     string          `db:"error_message" json:"error_message,omitempty"`
	Attempts         int             `db:"attempts" json:"attempts"`
	RetryAfter       *time.Time      `db:"retry_after" json:"retry_after,omitempty"`
	RecipeID         *uuid.UUID      `db:"recipe_id" json:"recipe_id"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
